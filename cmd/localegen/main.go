// localegen — компилятор PO-каталогов переводов в плоские JSON-каталоги,
// встраиваемые в бинарник (internal/ui/i18n/locales).
//
// Использование:
//
//	go run ./cmd/localegen -src translations -out internal/ui/i18n/locales
//
// Для каждого файла <lang>.po в src создаётся <lang>.json в out.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leonelquinteros/gotext"
)

func main() {
	src := flag.String("src", "translations", "директория с PO-файлами")
	out := flag.String("out", "internal/ui/i18n/locales", "директория для JSON-каталогов")
	flag.Parse()

	if err := run(*src, *out); err != nil {
		fmt.Fprintln(os.Stderr, "localegen:", err)
		os.Exit(1)
	}
}

func run(src, out string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("чтение %s: %w", src, err)
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("создание %s: %w", out, err)
	}

	compiled := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".po") {
			continue
		}

		lang := strings.TrimSuffix(entry.Name(), ".po")
		path := filepath.Join(src, entry.Name())

		catalog, err := compilePo(path)
		if err != nil {
			return fmt.Errorf("компиляция %s: %w", path, err)
		}

		data, err := json.MarshalIndent(catalog, "", "  ")
		if err != nil {
			return fmt.Errorf("сериализация каталога %s: %w", lang, err)
		}
		data = append(data, '\n')

		target := filepath.Join(out, lang+".json")
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("запись %s: %w", target, err)
		}

		fmt.Printf("%s: %d строк → %s\n", path, len(catalog), target)
		compiled++
	}

	if compiled == 0 {
		return fmt.Errorf("в %s не найдено PO-файлов", src)
	}
	return nil
}

// compilePo разбирает PO-файл и возвращает плоский каталог msgid → msgstr.
// Записи без перевода пропускаются (fallback на английский выполняется
// во время выполнения).
func compilePo(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	po := gotext.NewPo()
	po.Parse(data)

	catalog := map[string]string{}
	for id, tr := range po.GetDomain().GetTranslations() {
		if id == "" {
			continue // заголовок PO
		}
		if msg := tr.Get(); msg != "" {
			catalog[id] = msg
		}
	}
	return catalog, nil
}
