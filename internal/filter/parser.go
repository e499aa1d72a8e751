package filter

import "strconv"

// Parse converts filter text into an Expression. On malformed input the
// returned error is a *ParseError pointing at the first unconsumed
// character.
func Parse(text string) (*Expression, error) {
	tokens, lerr := lexAll(text)
	if lerr != nil {
		return nil, lerr
	}

	p := &parser{input: text, tokens: tokens}

	conditions, joins, err := p.parseConditions()
	if err != nil {
		return nil, err
	}

	return foldConditions(conditions, joins), nil
}

// parser is a small recursive-descent parser over the token slice.
type parser struct {
	input  string
	tokens []token
	i      int
}

func (p *parser) peek() token {
	return p.tokens[p.i]
}

func (p *parser) next() token {
	tok := p.tokens[p.i]
	if tok.kind != tokenEOF {
		p.i++
	}
	return tok
}

func (p *parser) errorAt(tok token, format string, args ...any) *ParseError {
	return errorAt(p.input, tok.pos, format, args...)
}

// parseConditions parses "condition ((&&|'||') condition)*" and returns the
// flat condition list plus the logical operator between each adjacent pair.
func (p *parser) parseConditions() ([]Condition, []LogicalOperator, *ParseError) {
	var conditions []Condition
	var joins []LogicalOperator

	cond, err := p.parseCondition()
	if err != nil {
		return nil, nil, err
	}
	conditions = append(conditions, cond)

	for {
		tok := p.peek()
		switch tok.kind {
		case tokenEOF:
			return conditions, joins, nil
		case tokenAnd:
			p.next()
			joins = append(joins, OpAnd)
		case tokenOr:
			p.next()
			joins = append(joins, OpOr)
		default:
			return nil, nil, p.errorAt(tok, "expected '&&' or '||', got %q", tok.text)
		}

		cond, err := p.parseCondition()
		if err != nil {
			return nil, nil, err
		}
		conditions = append(conditions, cond)
	}
}

// parseCondition parses "<field> <operator> <value>". The field determines
// how the value literal is typed.
func (p *parser) parseCondition() (Condition, *ParseError) {
	fieldTok := p.next()
	if fieldTok.kind != tokenWord {
		return Condition{}, p.errorAt(fieldTok, "expected field name, got %q", fieldTok.text)
	}
	if reservedIdentifiers[fieldTok.text] {
		return Condition{}, p.errorAt(fieldTok, "field %q is not allowed", fieldTok.text)
	}
	field := Field(fieldTok.text)
	kind, ok := KindOf(field)
	if !ok {
		return Condition{}, p.errorAt(fieldTok, "unknown field %q", fieldTok.text)
	}

	op, err := p.parseOperator()
	if err != nil {
		return Condition{}, err
	}

	value, err := p.parseValue(field, kind)
	if err != nil {
		return Condition{}, err
	}

	return Condition{Field: field, Operator: op, Value: value}, nil
}

// parseOperator accepts the comparison tokens plus the word operators
// "like", "in" and the two-word "not in".
func (p *parser) parseOperator() (Operator, *ParseError) {
	tok := p.next()
	switch tok.kind {
	case tokenCompare:
		return Operator(tok.text), nil
	case tokenWord:
		switch tok.text {
		case "like":
			return OpLike, nil
		case "in":
			return OpIn, nil
		case "not":
			after := p.next()
			if after.kind != tokenWord || after.text != "in" {
				return "", p.errorAt(after, "expected 'in' after 'not', got %q", after.text)
			}
			return OpNotIn, nil
		}
	}
	return "", p.errorAt(tok, "expected operator, got %q", tok.text)
}

// parseValue parses the literal for a field of the given kind.
func (p *parser) parseValue(field Field, kind ValueKind) (any, *ParseError) {
	switch kind {
	case KindBoolean:
		tok := p.next()
		if tok.kind == tokenWord {
			switch tok.text {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
		return nil, p.errorAt(tok, "expected true or false for field %q, got %q", field, tok.text)

	case KindNumber:
		tok := p.next()
		if tok.kind == tokenWord {
			if n, err := strconv.ParseFloat(tok.text, 64); err == nil {
				return n, nil
			}
		}
		return nil, p.errorAt(tok, "expected number for field %q, got %q", field, tok.text)

	case KindString:
		tok := p.next()
		if tok.kind != tokenString {
			return nil, p.errorAt(tok, "expected quoted string for field %q, got %q", field, tok.text)
		}
		return tok.text, nil

	case KindDate:
		// Dates stay string literals; relative tokens resolve lazily at
		// evaluation time. Both bare and quoted forms are accepted.
		tok := p.next()
		if tok.kind != tokenWord && tok.kind != tokenString {
			return nil, p.errorAt(tok, "expected date for field %q, got %q", field, tok.text)
		}
		return tok.text, nil

	case KindArray:
		return p.parseArray(field)

	default:
		tok := p.peek()
		return nil, p.errorAt(tok, "field %q has unsupported value kind", field)
	}
}

// parseArray parses a bracketed comma list. Elements are numbers or quoted
// strings; bare non-numeric elements are kept as strings.
func (p *parser) parseArray(field Field) (any, *ParseError) {
	open := p.next()
	if open.kind != tokenLBracket {
		return nil, p.errorAt(open, "expected '[' for field %q, got %q", field, open.text)
	}

	var elements []any
	if p.peek().kind == tokenRBracket {
		p.next()
		return elements, nil
	}

	for {
		tok := p.next()
		switch tok.kind {
		case tokenWord:
			if n, err := strconv.ParseFloat(tok.text, 64); err == nil {
				elements = append(elements, n)
			} else {
				elements = append(elements, tok.text)
			}
		case tokenString:
			elements = append(elements, tok.text)
		default:
			return nil, p.errorAt(tok, "expected array element, got %q", tok.text)
		}

		sep := p.next()
		switch sep.kind {
		case tokenComma:
			continue
		case tokenRBracket:
			return elements, nil
		default:
			return nil, p.errorAt(sep, "expected ',' or ']', got %q", sep.text)
		}
	}
}

// foldConditions groups a flat condition list by its joining operators.
// Consecutive conditions joined by the same operator share a group; an
// operator change closes the group and becomes the expression-level
// operator. Shared by the parser and the Builder so both produce identical
// expressions for the same condition sequence.
func foldConditions(conditions []Condition, joins []LogicalOperator) *Expression {
	expr := &Expression{Operator: OpAnd}
	if len(conditions) == 0 {
		return expr
	}

	group := Group{Conditions: []Condition{conditions[0]}}
	for i, join := range joins {
		next := conditions[i+1]
		switch {
		case group.Operator == "":
			group.Operator = join
			group.Conditions = append(group.Conditions, next)
		case join == group.Operator:
			group.Conditions = append(group.Conditions, next)
		default:
			// Operator change: close the group, the new operator joins
			// the groups.
			expr.Operator = join
			expr.Groups = append(expr.Groups, group)
			group = Group{Conditions: []Condition{next}}
		}
	}
	if group.Operator == "" {
		group.Operator = OpAnd
	}
	expr.Groups = append(expr.Groups, group)

	// Earlier groups may have closed before a single-condition group chose
	// an operator; give those the default too.
	for i := range expr.Groups {
		if expr.Groups[i].Operator == "" {
			expr.Groups[i].Operator = OpAnd
		}
	}
	return expr
}
