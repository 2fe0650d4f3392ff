// Package cpf normalizes identity records returned by the CPF lookup
// provider, whose key naming differs between API versions.
package cpf

import "github.com/cassiomorais/pixgateway/internal/domain/fields"

// Length is the number of digits in a CPF.
const Length = 11

var dataKeys = []string{"DADOS", "dados", "data", "DadosBasicos", "dadosBasicos", "dados_basicos"}

var (
	cpfKeys       = []string{"cpf", "documento", "document"}
	nameKeys      = []string{"nome", "name"}
	motherKeys    = []string{"nome_mae", "nomeMae", "mae"}
	birthDateKeys = []string{"data_nascimento", "dataNascimento", "nascimento"}
	sexKeys       = []string{"sexo"}
)

// Record is the normalized identity record. Unresolved fields are empty.
type Record struct {
	CPF            string `json:"cpf"`
	Nome           string `json:"nome"`
	NomeMae        string `json:"nome_mae"`
	DataNascimento string `json:"data_nascimento"`
	Sexo           string `json:"sexo"`
}

// Extract reads a Record out of any provider payload. It never fails: a
// payload without a recognised data object is read from its root, and
// missing fields come back empty.
func Extract(payload map[string]any) Record {
	base, ok := fields.Object(payload, dataKeys...)
	if !ok {
		base = payload
	}
	return Record{
		CPF:            fields.First(base, cpfKeys...),
		Nome:           fields.First(base, nameKeys...),
		NomeMae:        fields.First(base, motherKeys...),
		DataNascimento: fields.First(base, birthDateKeys...),
		Sexo:           fields.First(base, sexKeys...),
	}
}

// Normalize keeps the digits of raw and cuts them to a CPF's length.
func Normalize(raw string) string {
	d := fields.DigitsOnly(raw)
	if len(d) > Length {
		d = d[:Length]
	}
	return d
}
