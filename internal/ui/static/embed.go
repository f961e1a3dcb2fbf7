// Пакет static — встроенные статические ресурсы админ-панели.
// Содержит страницу админ-панели, CSS и JS-глю для bootstrap-table
// (таблица пользователей) и vis.js (граф иерархии ролей).
// Файлы встраиваются в бинарник через //go:embed и раздаются через HTTP.
package static

import (
	"embed"
	"io/fs"
	"net/http"
)

// content — встроенная файловая система со всеми статическими ресурсами.
// Включает страницу index.html и поддиректории css/ и js/.
//
//go:embed index.html css/*.css js/*.js
var content embed.FS

// FileSystem возвращает http.FileSystem для обработки запросов к /static/*.
// Файлы доступны по путям вида /static/css/style.css, /static/js/users.js и т.д.
func FileSystem() http.FileSystem {
	return http.FS(content)
}

// FS возвращает fs.FS для прямого доступа к встроенным файлам.
func FS() fs.FS {
	return content
}
