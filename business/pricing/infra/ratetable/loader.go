// Package ratetable loads shipping rate tables from YAML documents.
package ratetable

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
)

//go:embed rates.yaml
var defaultRates []byte

type document struct {
	Version string                `yaml:"version"`
	Methods map[string][]bandSpec `yaml:"methods"`
}

type bandSpec struct {
	Min  int64 `yaml:"min"`
	Max  int64 `yaml:"max"`
	Cost yen   `yaml:"cost"`
}

// yen reads a cost scalar exactly, so fractional tariffs survive.
type yen struct {
	decimal.Decimal
}

func (y *yen) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: cost must be a number", node.Line)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: cost %q: %w", node.Line, node.Value, err)
	}
	y.Decimal = d
	return nil
}

// Default returns the table compiled into the binary.
func Default() (*domain.RateTable, error) {
	return Parse(defaultRates)
}

// MustDefault is Default for tests and package initialisation.
func MustDefault() *domain.RateTable {
	t, err := Default()
	if err != nil {
		panic("ratetable: embedded rates invalid: " + err.Error())
	}
	return t
}

// Load reads the table at path, or the embedded one when path is empty.
func Load(path string) (*domain.RateTable, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.New(apperror.CodeRateTableInvalid, apperror.WithContext(path), apperror.WithCause(err))
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a table document from r.
func Decode(r io.Reader) (*domain.RateTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperror.New(apperror.CodeRateTableInvalid, apperror.WithCause(err))
	}
	return Parse(data)
}

// Parse builds a validated table from YAML bytes.
func Parse(data []byte) (*domain.RateTable, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperror.New(apperror.CodeRateTableInvalid, apperror.WithContext("yaml"), apperror.WithCause(err))
	}

	bands := make(map[domain.MethodCode][]domain.Band, len(doc.Methods))
	for name, specs := range doc.Methods {
		code, err := domain.ParseMethodCode(name)
		if err != nil {
			return nil, apperror.New(apperror.CodeRateTableInvalid, apperror.WithContext("method "+name), apperror.WithCause(err))
		}
		list := make([]domain.Band, 0, len(specs))
		for _, s := range specs {
			list = append(list, domain.Band{
				MinGrams: domain.Grams(s.Min),
				MaxGrams: domain.Grams(s.Max),
				Cost:     s.Cost.Decimal,
			})
		}
		bands[code] = list
	}

	return domain.NewRateTable(doc.Version, bands)
}
