package pagination

import "testing"

func TestParams_Normalize(t *testing.T) {
	testCases := []struct {
		name      string
		in        Params
		wantPage  int
		wantLimit int
	}{
		{name: "zero values get defaults", in: Params{}, wantPage: 1, wantLimit: 10},
		{name: "negative page", in: Params{Page: -3, Limit: 20}, wantPage: 1, wantLimit: 20},
		{name: "limit above cap", in: Params{Page: 2, Limit: 500}, wantPage: 2, wantLimit: 100},
		{name: "valid values untouched", in: Params{Page: 4, Limit: 25}, wantPage: 4, wantLimit: 25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Page != tc.wantPage {
				t.Errorf("expected page %d, got %d", tc.wantPage, got.Page)
			}
			if got.Limit != tc.wantLimit {
				t.Errorf("expected limit %d, got %d", tc.wantLimit, got.Limit)
			}
		})
	}
}

func TestParams_Offset(t *testing.T) {
	p := Params{Page: 3, Limit: 10}
	if p.Offset() != 20 {
		t.Errorf("expected offset 20, got %d", p.Offset())
	}
}

func TestTotalPages(t *testing.T) {
	testCases := []struct {
		total int
		limit int
		want  int
	}{
		{total: 0, limit: 10, want: 0},
		{total: 1, limit: 10, want: 1},
		{total: 10, limit: 10, want: 1},
		{total: 11, limit: 10, want: 2},
		{total: 23, limit: 10, want: 3},
		{total: 100, limit: 100, want: 1},
		{total: 101, limit: 100, want: 2},
	}

	for _, tc := range testCases {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, expected %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

// TotalPages должен совпадать с ceil(total/limit) на всём диапазоне входов.
func TestTotalPages_CeilInvariant(t *testing.T) {
	for total := 0; total <= 250; total++ {
		for limit := 1; limit <= 30; limit++ {
			want := (total + limit - 1) / limit
			if total == 0 {
				want = 0
			}
			if got := TotalPages(total, limit); got != want {
				t.Fatalf("TotalPages(%d, %d) = %d, expected %d", total, limit, got, want)
			}
		}
	}
}

func TestNewResponse(t *testing.T) {
	data := []string{"a", "b", "c"}
	resp := NewResponse(data, Params{Page: 2, Limit: 3}, 23)

	if resp.Items != 3 {
		t.Errorf("expected items 3, got %d", resp.Items)
	}
	if resp.Page != 2 {
		t.Errorf("expected page 2, got %d", resp.Page)
	}
	if resp.Total != 23 {
		t.Errorf("expected total 23, got %d", resp.Total)
	}
	if resp.TotalPages != 8 {
		t.Errorf("expected total pages 8, got %d", resp.TotalPages)
	}
}

func TestNewResponse_NilData(t *testing.T) {
	resp := NewResponse[int](nil, Params{Page: 1, Limit: 10}, 0)

	if resp.Data == nil {
		t.Fatal("expected non-nil data slice")
	}
	if resp.Items != 0 || resp.Total != 0 || resp.TotalPages != 0 {
		t.Errorf("expected empty envelope, got %+v", resp)
	}
}
