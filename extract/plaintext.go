package extract

import "os"

func (e *Extractor) extractPlainText(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: string(data), Pages: 1, Method: "plain-text"}, nil
}
