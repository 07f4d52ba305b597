package vismat

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/mapcase/mapgeo_browser/visibility"
)

const (
	TOKEN_HASH = iota
	TOKEN_IDENT
	TOKEN_NUMBER
	TOKEN_STRING
	TOKEN_ASSIGN
	TOKEN_COLON
	TOKEN_LBRACE
	TOKEN_RBRACE
	TOKEN_LBRACKET
	TOKEN_RBRACKET
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`0x[0-9a-fA-F]+`), getToken(TOKEN_HASH))
	lexer.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), getToken(TOKEN_IDENT))
	lexer.Add([]byte(`[\+\-]?[0-9]*\.?[0-9]+`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`"(\\.|[^"])*"`), getToken(TOKEN_STRING))
	lexer.Add([]byte(`=`), getToken(TOKEN_ASSIGN))
	lexer.Add([]byte(`:`), getToken(TOKEN_COLON))
	lexer.Add([]byte(`\{`), getToken(TOKEN_LBRACE))
	lexer.Add([]byte(`\}`), getToken(TOKEN_RBRACE))
	lexer.Add([]byte(`\[`), getToken(TOKEN_LBRACKET))
	lexer.Add([]byte(`\]`), getToken(TOKEN_RBRACKET))
	lexer.Add([]byte(`#[^\n]*`), skip)
	lexer.Add([]byte(`(\s|,)+`), skip)
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

// ParseRitobin builds a controller graph out of the ritobin text dump of the
// materials descriptor ("0xHASH = Type { Prop: u8 = N ... }" entries).
// Entries of non-controller types are tokenized and skipped.
func ParseRitobin(text []byte) (visibility.Graph, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	toks := make([]*lexmachine.Token, 0, 256)
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		toks = append(toks, itok.(*lexmachine.Token))
	}

	p := &ritobinParser{toks: toks}
	entries, err := p.parse()
	if err != nil {
		return nil, err
	}
	return buildGraph(entries), nil
}

type ritobinParser struct {
	toks []*lexmachine.Token
	pos  int
}

func (p *ritobinParser) peek() *lexmachine.Token {
	if p.pos >= len(p.toks) {
		return nil
	}
	return p.toks[p.pos]
}

func (p *ritobinParser) next() *lexmachine.Token {
	tok := p.peek()
	if tok != nil {
		p.pos++
	}
	return tok
}

func (p *ritobinParser) accept(tokenType int) (*lexmachine.Token, bool) {
	tok := p.peek()
	if tok == nil || tok.Type != tokenType {
		return nil, false
	}
	p.pos++
	return tok, true
}

func (p *ritobinParser) parse() ([]entry, error) {
	var entries []entry
	for p.peek() != nil {
		// top level is a flat run of "HASH = Type { ... }" definitions;
		// anything else (headers, version pragmas) is skipped token-wise
		hashTok, ok := p.accept(TOKEN_HASH)
		if !ok {
			p.next()
			continue
		}
		if _, ok := p.accept(TOKEN_ASSIGN); !ok {
			continue
		}

		typeTok := p.peek()
		if typeTok == nil || (typeTok.Type != TOKEN_IDENT && typeTok.Type != TOKEN_HASH) {
			continue
		}
		p.next()
		if _, ok := p.accept(TOKEN_LBRACE); !ok {
			continue
		}

		hash, ok := parseHashRef(string(hashTok.Lexeme))
		if !ok {
			p.skipBody()
			continue
		}

		e := entry{hash: hash, typeName: string(typeTok.Lexeme)}
		if err := p.parseBody(&e); err != nil {
			return nil, errors.Wrapf(err, "Failed to parse entry 0x%08x on line %v", hash, hashTok.StartLine)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// parseBody consumes tokens up to the entry's closing brace, picking out the
// handful of properties controllers carry.
func (p *ritobinParser) parseBody(e *entry) error {
	for {
		tok := p.next()
		if tok == nil {
			return errors.Errorf("unterminated entry body")
		}

		switch tok.Type {
		case TOKEN_RBRACE:
			return nil
		case TOKEN_LBRACE:
			p.skipBody()
		case TOKEN_IDENT, TOKEN_HASH:
			if _, ok := p.accept(TOKEN_COLON); !ok {
				continue
			}
			p.parseProperty(e, string(tok.Lexeme))
		}
	}
}

// parseProperty sits after "key:" and reads the annotated value
// ("u32 = 3", "list2[link] = { ... }", "string = \"...\"").
func (p *ritobinParser) parseProperty(e *entry, key string) {
	// type annotation: IDENT with optional [IDENT]
	if _, ok := p.accept(TOKEN_IDENT); !ok {
		return
	}
	if _, ok := p.accept(TOKEN_LBRACKET); ok {
		p.accept(TOKEN_IDENT)
		p.accept(TOKEN_RBRACKET)
	}
	if _, ok := p.accept(TOKEN_ASSIGN); !ok {
		return
	}

	switch {
	case key == "ParentMode":
		if numTok, ok := p.accept(TOKEN_NUMBER); ok {
			if v, err := strconv.ParseUint(string(numTok.Lexeme), 10, 32); err == nil {
				e.parentMode = uint32(v)
			}
		}
	case key == "Parents":
		if _, ok := p.accept(TOKEN_LBRACE); !ok {
			return
		}
		e.hasParents = true
		for {
			tok := p.next()
			if tok == nil || tok.Type == TOKEN_RBRACE {
				return
			}
			if tok.Type == TOKEN_HASH {
				if hash, ok := parseHashRef(string(tok.Lexeme)); ok {
					e.parents = append(e.parents, hash)
				}
			}
		}
	case key == "Name":
		if strTok, ok := p.accept(TOKEN_STRING); ok {
			if s, err := strconv.Unquote(string(strTok.Lexeme)); err == nil {
				e.name = s
			}
		}
	case normalizeTypeName(key) == propDragonBit:
		if numTok, ok := p.accept(TOKEN_NUMBER); ok {
			if v, err := strconv.ParseUint(string(numTok.Lexeme), 10, 8); err == nil {
				b := uint8(v)
				e.dragonBit = &b
			}
		}
	case normalizeTypeName(key) == propPitBit:
		if numTok, ok := p.accept(TOKEN_NUMBER); ok {
			if v, err := strconv.ParseUint(string(numTok.Lexeme), 10, 8); err == nil {
				b := uint8(v)
				e.pitBit = &b
			}
		}
	default:
		// unknown property: swallow a single value token or nested block
		tok := p.peek()
		if tok == nil {
			return
		}
		p.next()
		if tok.Type == TOKEN_LBRACE {
			p.skipBody()
		}
	}
}

// skipBody consumes tokens up to and including the brace matching an already
// consumed opening one.
func (p *ritobinParser) skipBody() {
	depth := 1
	for depth > 0 {
		tok := p.next()
		if tok == nil {
			return
		}
		switch tok.Type {
		case TOKEN_LBRACE:
			depth++
		case TOKEN_RBRACE:
			depth--
		}
	}
}
