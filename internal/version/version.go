// Package version хранит информацию о сборке, проставляемую через -ldflags
// при компиляции; попадает в ответ health-эндпоинта.
package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

// String собирает информацию о сборке в одну строку.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
