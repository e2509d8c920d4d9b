// Package chart loads chart-of-accounts templates from YAML and seeds them
// through the account service.
package chart

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

//go:embed default.yaml
var defaultChart []byte

// Chart is a tree of account templates. Nodes with children become
// aggregator accounts; children inherit their parent's type when they do not
// set one.
type Chart struct {
	Name     string `yaml:"name"`
	Accounts []Node `yaml:"accounts"`
}

type Node struct {
	Code           string `yaml:"code"`
	Name           string `yaml:"name"`
	Type           string `yaml:"type,omitempty"`
	Description    string `yaml:"description,omitempty"`
	OpeningBalance string `yaml:"opening_balance,omitempty"`
	RunningBalance string `yaml:"running_balance,omitempty"`
	Children       []Node `yaml:"children,omitempty"`
}

// Entry is one account of a flattened chart.
type Entry struct {
	Code           string
	Name           string
	Type           domain.AccountType
	ParentCode     string
	IsParent       bool
	Description    string
	OpeningBalance decimal.Decimal
	RunningBalance *decimal.Decimal
}

// Default returns the embedded small-business chart.
func Default() (*Chart, error) {
	return Parse(defaultChart)
}

// Load reads a chart file from disk.
func Load(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chart: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Chart, error) {
	var c Chart
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing chart: %w", err)
	}
	if len(c.Accounts) == 0 {
		return nil, errors.New("parsing chart: no accounts")
	}
	if _, err := c.Flatten(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Flatten returns the accounts parent-first, validating codes, types and
// amounts on the way.
func (c *Chart) Flatten() ([]Entry, error) {
	var out []Entry
	seen := make(map[string]bool)

	var walk func(nodes []Node, parent *Entry) error
	walk = func(nodes []Node, parent *Entry) error {
		for _, n := range nodes {
			e, err := entryFor(n, parent)
			if err != nil {
				return err
			}
			if seen[e.Code] {
				return fmt.Errorf("account %s: duplicate code", e.Code)
			}
			seen[e.Code] = true
			out = append(out, e)

			if err := walk(n.Children, &e); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(c.Accounts, nil); err != nil {
		return nil, fmt.Errorf("chart %q: %w", c.Name, err)
	}
	return out, nil
}

func entryFor(n Node, parent *Entry) (Entry, error) {
	e := Entry{
		Code:        strings.TrimSpace(n.Code),
		Name:        strings.TrimSpace(n.Name),
		Type:        domain.AccountType(n.Type),
		IsParent:    len(n.Children) > 0,
		Description: n.Description,
	}
	if e.Code == "" || e.Name == "" {
		return e, fmt.Errorf("account %q: code and name are required", n.Name)
	}
	if parent != nil {
		e.ParentCode = parent.Code
		if e.Type == "" {
			e.Type = parent.Type
		}
	}
	if !e.Type.IsValid() {
		return e, fmt.Errorf("account %s: invalid type %q", e.Code, e.Type)
	}

	if n.OpeningBalance != "" {
		d, err := decimal.NewFromString(n.OpeningBalance)
		if err != nil {
			return e, fmt.Errorf("account %s: opening_balance: %w", e.Code, err)
		}
		e.OpeningBalance = d
	}
	if n.RunningBalance != "" {
		if e.IsParent {
			return e, fmt.Errorf("account %s: aggregators cannot carry a running_balance", e.Code)
		}
		d, err := decimal.NewFromString(n.RunningBalance)
		if err != nil {
			return e, fmt.Errorf("account %s: running_balance: %w", e.Code, err)
		}
		e.RunningBalance = &d
	}
	return e, nil
}
