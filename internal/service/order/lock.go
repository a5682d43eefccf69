package order

import (
	"sort"
	"sync"
)

// keyedMutex выдаёт мьютекс на каждый ключ. Используется для сериализации
// оформлений, задевающих один и тот же товар, внутри процесса: проверка
// остатка и списание — два отдельных запроса к бэкенду, без блокировки два
// конкурентных заказа могут пройти проверку до того, как любой из них спишет
// остаток.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// lockAll захватывает мьютексы уникальных ключей в отсортированном порядке,
// чтобы два оформления с пересекающимися корзинами не взаимоблокировались.
// Возвращает функцию освобождения.
func (k *keyedMutex) lockAll(keys []string) func() {
	unique := make(map[string]bool, len(keys))
	ordered := make([]string, 0, len(keys))
	for _, key := range keys {
		if !unique[key] {
			unique[key] = true
			ordered = append(ordered, key)
		}
	}
	sort.Strings(ordered)

	held := make([]*sync.Mutex, 0, len(ordered))
	for _, key := range ordered {
		m := k.get(key)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
