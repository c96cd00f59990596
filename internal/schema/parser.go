package schema

import (
	"github.com/johannes-adr/smith/pkg/errs"
)

var errRange = errs.NewRange(
	"schema",
	`hint: schema declarations look like:
struct Name<T>{ field: Type }
enum Name<T>{ Variant Variant(Type) }`,
	errs.WithRangeSize(50),
)

var (
	errUnexpectedRune   = errRange.New("Unexpected Character", "unexpected character %q")
	errUnexpectedToken = errRange.New("Unexpected Token", "expected %s, got %q")
	errDuplicateDecl   = errRange.New("Duplicate Declaration", "declaration %q is already defined")
)

// Parse consumes schema source text and returns its AST, or a non-nil error
// accumulated as a single errs.List-backed value. The parser does not
// attempt recovery once a fatal error has been raised (mirrors perr.List's
// Bailout semantics, grounded on the teacher's constant.Parse).
func Parse(src string) (*File, error) {
	p := &parser{lex: newLexer(src)}
	var file *File
	func() {
		defer p.errs.Bailout()
		p.advance()
		file = p.parseFile()
	}()
	if err := p.errs.AsError(); err != nil {
		return nil, err
	}
	for _, d := range file.Decls {
		for _, slot := range d.TypeExprs() {
			(*slot).Desugar()
		}
	}
	return file, nil
}

type parser struct {
	lex  *lexer
	tok  token
	errs errs.List
}

func (p *parser) advance() {
	tok, lerr := p.lex.next()
	if lerr != nil {
		p.errs.Fatalf(errUnexpectedRune, errs.Pos(lerr.pos), lerr.r)
	}
	p.tok = tok
}

func (p *parser) expect(k tokenKind, what string) token {
	if p.tok.kind != k {
		p.errs.Fatalf(errUnexpectedToken, errs.Pos(p.tok.pos), what, p.tok.text)
	}
	t := p.tok
	p.advance()
	return t
}

func (p *parser) parseFile() *File {
	f := &File{}
	seen := map[string]bool{}
	for p.tok.kind != tokEOF {
		var decl *RootDecl
		switch p.tok.kind {
		case tokKwStruct:
			decl = p.parseStruct()
		case tokKwEnum:
			decl = p.parseEnum()
		default:
			p.errs.Fatalf(errUnexpectedToken, errs.Pos(p.tok.pos), "'struct' or 'enum'", p.tok.text)
		}
		if seen[decl.Name] {
			p.errs.Fatalf(errDuplicateDecl, errs.Pos(decl.Pos), decl.Name)
		}
		seen[decl.Name] = true
		f.Decls = append(f.Decls, decl)
	}
	return f
}

func (p *parser) parseGenerics() []string {
	if p.tok.kind != tokLAngle {
		return nil
	}
	p.advance()
	var names []string
	for {
		id := p.expect(tokIdent, "generic parameter name")
		names = append(names, id.text)
		if p.tok.kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	p.expect(tokRAngle, "'>'")
	return names
}

func (p *parser) parseStruct() *RootDecl {
	pos := p.tok.pos
	p.advance() // 'struct'
	name := p.expect(tokIdent, "struct name")
	generics := p.parseGenerics()
	p.expect(tokLBrace, "'{'")
	var fields []Field
	for p.tok.kind != tokRBrace {
		fpos := p.tok.pos
		fname := p.expect(tokIdent, "field name")
		p.expect(tokColon, "':'")
		typ := p.parseType()
		fields = append(fields, Field{Name: fname.text, Type: typ, Pos: fpos})
	}
	p.expect(tokRBrace, "'}'")
	return &RootDecl{Kind: RootStruct, Name: name.text, Generics: generics, Fields: fields, Pos: pos}
}

func (p *parser) parseEnum() *RootDecl {
	pos := p.tok.pos
	p.advance() // 'enum'
	name := p.expect(tokIdent, "enum name")
	generics := p.parseGenerics()
	p.expect(tokLBrace, "'{'")
	var variants []VariantDecl
	for p.tok.kind != tokRBrace {
		vpos := p.tok.pos
		vname := p.expect(tokIdent, "variant name")
		var payload *TypeExpr
		if p.tok.kind == tokLParen {
			p.advance()
			payload = p.parseType()
			p.expect(tokRParen, "')'")
		}
		variants = append(variants, VariantDecl{Name: vname.text, Payload: payload, Pos: vpos})
	}
	p.expect(tokRBrace, "'}'")
	return &RootDecl{Kind: RootEnum, Name: name.text, Generics: generics, Variants: variants, Pos: pos}
}

func (p *parser) parseType() *TypeExpr {
	pos := p.tok.pos
	id := p.expect(tokIdent, "type name")
	if prim, ok := primNames[id.text]; ok {
		return &TypeExpr{Kind: ExprPrimitive, Pos: pos, Prim: prim}
	}
	if id.text == "Array" {
		p.expect(tokLAngle, "'<'")
		elem := p.parseType()
		p.expect(tokRAngle, "'>'")
		return &TypeExpr{Kind: ExprArray, Pos: pos, Elem: elem}
	}
	var args []*TypeExpr
	if p.tok.kind == tokLAngle {
		p.advance()
		for {
			args = append(args, p.parseType())
			if p.tok.kind == tokComma {
				p.advance()
				continue
			}
			break
		}
		p.expect(tokRAngle, "'>'")
	}
	return &TypeExpr{Kind: ExprCustom, Pos: pos, Name: id.text, Args: args}
}
