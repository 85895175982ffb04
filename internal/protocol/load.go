package protocol

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexiusacademia/gohyst/internal/imk"
	"github.com/cpmech/gosl/chk"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// MaterialFile is the on-disk definition of one material
type MaterialFile struct {
	Tag    int        `json:"tag" yaml:"tag"`
	Name   string     `json:"name,omitempty" yaml:"name,omitempty"`
	Params imk.Params `json:"params" yaml:"params"`
}

// LoadMaterial loads a material definition from a JSON or YAML file
func LoadMaterial(path string) (*MaterialFile, error) {
	var mf MaterialFile
	if err := decodeFile(path, &mf); err != nil {
		return nil, err
	}
	if err := mf.Params.Validate(); err != nil {
		return nil, err
	}
	return &mf, nil
}

// Load loads a protocol from a JSON, YAML or XLSX file
func Load(path string) (*Protocol, error) {
	var p *Protocol
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if p, err = LoadXLSX(f, name); err != nil {
			return nil, err
		}
	} else {
		p = new(Protocol)
		if err := decodeFile(path, p); err != nil {
			return nil, err
		}
	}
	if p.StepSize == 0 {
		p.StepSize = DefaultStepSize
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadXLSX reads the targets of a protocol from the first column of the
// first sheet. A non-numeric first row is taken as a header.
func LoadXLSX(r io.Reader, name string) (*Protocol, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	p := &Protocol{Name: name, StepSize: DefaultStepSize}
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, chk.Err("sheet %q row %d: %q is not a number", sheet, i+1, row[0])
		}
		p.Targets = append(p.Targets, v)
	}
	return p, nil
}

// decodeFile decodes a JSON or YAML file into v, based on its extension
func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(data, v)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	}
	return chk.Err("unsupported file format %q", filepath.Ext(path))
}
