package dto

import (
	"bytes"
	"encoding/json"
)

// Amount денежное поле запроса: принимает и число, и строку.
// Разбор и сообщения об ошибках остаются за use case'ом.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(data)
	return nil
}

func (a Amount) String() string {
	return string(a)
}
