package dotnet

import (
	"fmt"
	"slices"
	"strings"
)

// ParseTypeName parses a type name in reflection syntax:
//
//	Namespace.Outer+Inner`2[[Arg1, Asm], Arg2][]*&, Assembly, Version=1.0.0.0
//
// Nested names are joined with '+', inline generic arguments appear in
// brackets (optionally each in its own brackets with an assembly
// qualifier), and array, pointer and by-ref suffixes follow. A name without
// an assembly qualifier is scoped to defaultScope.
func ParseTypeName(name string, defaultScope AssemblyIdentity) (*TypeReference, error) {
	p := &typeNameParser{s: name}

	ref, err := p.parseTypeSpec(true, false)
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.peek())
	}

	applyScope(ref, defaultScope)
	return ref, nil
}

func applyScope(ref *TypeReference, scope AssemblyIdentity) {
	for r := ref; r != nil; r = r.DeclaringType {
		if r.Scope.IsZero() {
			r.Scope = scope
		}
	}
	for _, arg := range ref.GenericArgs {
		applyScope(arg, scope)
	}
}

type typeNameParser struct {
	s   string
	pos int
}

func (p *typeNameParser) eof() bool { return p.pos >= len(p.s) }

func (p *typeNameParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *typeNameParser) skipSpace() {
	for !p.eof() && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeNameParser) errorf(msg string, args ...any) error {
	return &TypeNameError{Name: p.s, Pos: p.pos, Message: fmt.Sprintf(msg, args...)}
}

func (p *typeNameParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		if p.eof() {
			return p.errorf("expected %q, found end of name", c)
		}
		return p.errorf("expected %q, found %q", c, p.peek())
	}
	p.pos++
	return nil
}

// parseTypeSpec parses one type name. inBrackets is set for a generic
// argument wrapped in its own brackets, where the assembly qualifier ends at
// the closing bracket.
func (p *typeNameParser) parseTypeSpec(allowAssembly, inBrackets bool) (*TypeReference, error) {
	ref, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}

	if p.atGenericArgs() {
		ref.GenericArgs, err = p.parseGenericArgs()
		if err != nil {
			return nil, err
		}
	}

	ref.Modifiers, err = p.parseModifiers()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if allowAssembly && p.peek() == ',' {
		p.pos++
		id, err := p.parseAssemblyName(inBrackets)
		if err != nil {
			return nil, err
		}
		for r := ref; r != nil; r = r.DeclaringType {
			r.Scope = id
		}
	}

	return ref, nil
}

func (p *typeNameParser) parseQualifiedName() (*TypeReference, error) {
	first, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	ref := &TypeReference{}
	if i := strings.LastIndexByte(first, '.'); i >= 0 {
		ref.Namespace, ref.Name = first[:i], first[i+1:]
		if slices.Contains(strings.Split(ref.Namespace, "."), "") {
			return nil, p.errorf("empty namespace segment in %q", first)
		}
	} else {
		ref.Name = first
	}
	if ref.Name == "" {
		return nil, p.errorf("empty type name")
	}

	for p.peek() == '+' {
		p.pos++
		nested, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		ref = &TypeReference{Name: nested, DeclaringType: ref}
	}

	return ref, nil
}

func isNameDelimiter(c byte) bool {
	switch c {
	case '[', ']', '*', '&', ',', '+':
		return true
	}
	return false
}

func (p *typeNameParser) parseIdentifier() (string, error) {
	p.skipSpace()

	var b strings.Builder
	for !p.eof() {
		c := p.s[p.pos]
		if c == '\\' {
			if p.pos+1 >= len(p.s) {
				return "", p.errorf("dangling escape")
			}
			b.WriteByte(p.s[p.pos+1])
			p.pos += 2
			continue
		}
		if isNameDelimiter(c) {
			break
		}
		b.WriteByte(c)
		p.pos++
	}

	ident := strings.TrimSpace(b.String())
	if ident == "" {
		return "", p.errorf("expected identifier")
	}
	return ident, nil
}

// atGenericArgs distinguishes "[Arg]" and "[[Arg]]" from array suffixes
// "[]", "[,]" and "[*]".
func (p *typeNameParser) atGenericArgs() bool {
	if p.peek() != '[' {
		return false
	}
	for i := p.pos + 1; i < len(p.s); i++ {
		switch p.s[i] {
		case ' ', '\t':
			continue
		case ']', ',', '*':
			return false
		default:
			return true
		}
	}
	return false
}

func (p *typeNameParser) parseGenericArgs() ([]*TypeReference, error) {
	p.pos++ // '['

	var args []*TypeReference
	for {
		p.skipSpace()

		var arg *TypeReference
		var err error
		if p.peek() == '[' {
			p.pos++
			arg, err = p.parseTypeSpec(true, true)
			if err == nil {
				err = p.expect(']')
			}
		} else {
			arg, err = p.parseTypeSpec(false, false)
		}
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return args, nil
		default:
			return nil, p.errorf("unterminated generic argument list")
		}
	}
}

func (p *typeNameParser) parseModifiers() ([]TypeModifier, error) {
	var mods []TypeModifier
	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			mods = append(mods, TypeModifier{Kind: ModifierPointer})
		case '&':
			p.pos++
			mods = append(mods, TypeModifier{Kind: ModifierByRef})
		case '[':
			if p.atGenericArgs() {
				return nil, p.errorf("generic arguments after modifier")
			}
			p.pos++
			rank := 1
			for {
				p.skipSpace()
				c := p.peek()
				if c == ',' {
					rank++
				} else if c == ']' {
					p.pos++
					break
				} else if c != '*' {
					return nil, p.errorf("unterminated array suffix")
				}
				p.pos++
			}
			mods = append(mods, TypeModifier{Kind: ModifierArray, Rank: rank})
		default:
			return mods, nil
		}
	}
}

func (p *typeNameParser) parseAssemblyName(inBrackets bool) (AssemblyIdentity, error) {
	start := p.pos
	end := len(p.s)
	if inBrackets {
		i := strings.IndexByte(p.s[start:], ']')
		if i < 0 {
			return AssemblyIdentity{}, p.errorf("unterminated assembly name")
		}
		end = start + i
	}
	text := p.s[start:end]
	p.pos = end

	parts := strings.Split(text, ",")
	id := AssemblyIdentity{Name: strings.TrimSpace(parts[0])}
	if id.Name == "" {
		return id, &TypeNameError{Name: p.s, Pos: start, Message: "empty assembly name"}
	}

	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return id, &TypeNameError{Name: p.s, Pos: start, Message: "malformed assembly attribute " + strings.TrimSpace(part)}
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "version":
			id.Version = value
		case "culture":
			id.Culture = value
		case "publickeytoken":
			id.PublicKeyToken = value
		}
	}

	return id, nil
}
