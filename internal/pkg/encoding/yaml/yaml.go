package yaml

import (
	"gopkg.in/yaml.v3"
)

func Encode(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func MustEncode(v any) []byte {
	data, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return data
}

func EncodeString(v any) (string, error) {
	data, err := Encode(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func Decode(data []byte, m any) error {
	return yaml.Unmarshal(data, m)
}

func DecodeString(data string, m any) error {
	return Decode([]byte(data), m)
}
