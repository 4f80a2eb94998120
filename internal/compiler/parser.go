package compiler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format identifies the layout of a machine description.
type Format string

const (
	FormatAuto     Format = ""
	FormatDocument Format = "document" // YAML or JSON mapping
	FormatClassic  Format = "classic"  // header lines followed by CSV rules
)

// Parser is responsible for converting raw bytes into a Machine.
type Parser struct {
	// Blank is used when the description does not name one.
	Blank domain.Symbol
}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{Blank: domain.DefaultBlank}
}

// Parse detects the format of data and decodes it.
func (p *Parser) Parse(data []byte) (*domain.Machine, error) {
	return p.ParseFormat(data, FormatAuto)
}

// ParseFormat decodes data in the given format. The result is normalized
// (moves upper-cased, blank defaulted) but not validated.
func (p *Parser) ParseFormat(data []byte, format Format) (*domain.Machine, error) {
	if format == FormatAuto {
		format = Detect(data)
	}

	var (
		m   *domain.Machine
		err error
	)
	switch format {
	case FormatDocument:
		m, err = p.parseDocument(data)
	case FormatClassic:
		m, err = p.parseClassic(data)
	default:
		return nil, fmt.Errorf("unsupported machine format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if m.Blank == "" {
		m.Blank = p.Blank
		if m.Blank == "" {
			m.Blank = domain.DefaultBlank
		}
	}
	return m, nil
}

// Detect returns FormatDocument when data decodes to a YAML/JSON mapping.
func Detect(data []byte) Format {
	var probe any
	if err := yaml.Unmarshal(data, &probe); err == nil {
		if _, ok := probe.(map[string]any); ok {
			return FormatDocument
		}
	}
	return FormatClassic
}

func (p *Parser) parseDocument(data []byte) (*domain.Machine, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse machine: %w", err)
	}

	var m domain.Machine
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &m,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			ruleFromStringHook,
			moveHook,
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode machine: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("machine missing name")
	}
	return &m, nil
}

var (
	moveType       = reflect.TypeOf(domain.Move(""))
	transitionType = reflect.TypeOf(domain.Transition{})
)

// moveHook accepts "l", "left", "N" and friends wherever a Move is expected.
func moveHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != moveType || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.ParseMove(reflect.ValueOf(data).String())
}

// ruleFromStringHook lets a document list rules in the compact
// "state,read,next,write,move" form.
func ruleFromStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != transitionType || from.Kind() != reflect.String {
		return data, nil
	}
	fields := strings.Split(reflect.ValueOf(data).String(), ",")
	return parseRule(fields)
}

func parseRule(fields []string) (domain.Transition, error) {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) != 5 {
		return domain.Transition{}, fmt.Errorf("rule %q: want 5 fields (state,read,next,write,move), got %d",
			strings.Join(fields, ","), len(fields))
	}
	move, err := domain.ParseMove(fields[4])
	if err != nil {
		return domain.Transition{}, fmt.Errorf("rule %q: %w", strings.Join(fields, ","), err)
	}
	return domain.Transition{
		From:  fields[0],
		Read:  domain.Symbol(fields[1]),
		To:    fields[2],
		Write: domain.Symbol(fields[3]),
		Move:  move,
	}, nil
}

// classic header rows, in order.
const (
	rowName = iota
	rowStates
	rowInput
	rowTape
	rowStart
	rowAccept
	rowReject
	headerRows
)

func (p *Parser) parseClassic(data []byte) (*domain.Machine, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.Comment = '#'
	r.TrimLeadingSpace = true

	var (
		rows  [][]string
		lines []int
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse machine: %w", err)
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, trimAll(rec))
		lines = append(lines, line)
	}

	if len(rows) < headerRows {
		return nil, fmt.Errorf("failed to parse machine: want at least %d header lines, got %d", headerRows, len(rows))
	}

	m := &domain.Machine{
		Name:          strings.Join(rows[rowName], ","),
		States:        rows[rowStates],
		InputAlphabet: symbols(rows[rowInput]),
		TapeAlphabet:  symbols(rows[rowTape]),
		Start:         first(rows[rowStart]),
		Accept:        first(rows[rowAccept]),
		Reject:        first(rows[rowReject]),
	}

	for i, rec := range rows[headerRows:] {
		t, err := parseRule(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lines[headerRows+i], err)
		}
		m.Transitions = append(m.Transitions, t)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("machine missing name")
	}
	return m, nil
}

func trimAll(rec []string) []string {
	out := rec[:0]
	for _, f := range rec {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func symbols(fields []string) []domain.Symbol {
	out := make([]domain.Symbol, len(fields))
	for i, f := range fields {
		out[i] = domain.Symbol(f)
	}
	return out
}

func first(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
