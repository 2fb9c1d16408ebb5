package move

import (
	"strings"

	"restruct/internal/analyze"
	"restruct/internal/resolve"
	"restruct/internal/rewrite"
	"restruct/internal/syntax"
)

// Options tune a move. The zero value uses the heuristic resolver and no
// field injection.
type Options struct {
	// InjectFields threads private fields read by the method in as explicit
	// parameters when nothing else forces a receiver, reducing coupling to
	// the source type.
	InjectFields bool
	// Resolver classifies identifiers; nil defaults to resolve.Heuristic.
	Resolver resolve.Resolver
}

func (o Options) resolver() resolve.Resolver {
	if o.Resolver != nil {
		return o.Resolver
	}
	return resolve.Heuristic{}
}

// InjectedField records one private field turned into a parameter.
type InjectedField struct {
	Field string
	Param string
	Type  string
}

// Result is the outcome of the locate-analyze-transform-stub pipeline for
// one method. Merging the moved method into its destination is the caller's
// next step.
type Result struct {
	Op Operation
	// Source is the rewritten source module: the method replaced by its
	// delegating stub, plus the access member when one was created.
	Source *syntax.Module
	// Moved is the transformed method ready to merge into the target type.
	Moved *syntax.Method
	// Receiver is the injected receiver-parameter name, empty when the
	// method needed none.
	Receiver string
	Injected []InjectedField
	// AccessCreated reports whether a new access member was installed, as
	// opposed to reusing a same-named member.
	AccessCreated bool
}

// mover carries one operation through its states. Failure at any state
// aborts the operation; there are no retries.
type mover struct {
	src  *syntax.Module
	op   Operation
	opts Options

	// Located
	td      *syntax.TypeDecl
	tdIndex int
	method  *syntax.Method
	mIndex  int

	// Analyzed
	sets   resolve.MemberSets
	locals resolve.NameSet
	report analyze.Report

	// Transformed
	moved    *syntax.Method
	receiver string
	injected []InjectedField

	// Stubbed
	stub          *syntax.Method
	accessCreated bool
}

// Run executes one move against the source module and returns the rewritten
// source plus the method to merge. The source module is never mutated.
func Run(src *syntax.Module, op Operation, opts Options) (*Result, error) {
	mv := &mover{src: src, op: op, opts: opts}
	for _, step := range []func() error{
		mv.locate,
		mv.analyzeUsage,
		mv.transform,
		mv.buildStub,
	} {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return mv.finish(), nil
}

func (mv *mover) locate() error {
	td, ti := mv.src.FindType(mv.op.SourceType)
	if td == nil {
		return Errf(NotFound, "type %q not found in source module", mv.op.SourceType)
	}
	mem, mi := td.FindMember(mv.op.Method)
	if mi < 0 {
		return Errf(NotFound, "method %q not found on type %q", mv.op.Method, mv.op.SourceType)
	}
	if mem.Kind != syntax.MethodMember {
		return Errf(WrongKind, "member %q of type %q is not a method", mv.op.Method, mv.op.SourceType)
	}
	m := mem.Method
	if m.IsStatic() != mv.op.Static {
		want := "instance"
		if mv.op.Static {
			want = "static"
		}
		return Errf(WrongKind, "method %s.%s is not %s", mv.op.SourceType, mv.op.Method, want)
	}
	if m.ReturnType == "" {
		return Errf(Unsupported, "cannot move constructor %s", mv.op.SourceType)
	}
	if !m.HasBody {
		return Errf(Unsupported, "method %s.%s has no body", mv.op.SourceType, mv.op.Method)
	}
	mv.td, mv.tdIndex = td, ti
	mv.method, mv.mIndex = m, mi
	return nil
}

func (mv *mover) analyzeUsage() error {
	mv.sets = resolve.Collect(mv.td)
	mv.locals = mv.opts.resolver().Locals(mv.method)
	mv.report = analyze.Inspect(mv.method, mv.sets, mv.opts.resolver())
	return nil
}

// wantsInjection reports whether the configured policy replaces a receiver
// with explicit field parameters: only private-field reads, nothing else
// touching instance state, no sibling calls, no recursion.
func (mv *mover) wantsInjection() bool {
	return mv.opts.InjectFields &&
		len(mv.report.PrivateFieldReads) > 0 &&
		!mv.report.BeyondPrivateFields &&
		!mv.report.Usage.CallsSiblingMethods &&
		!mv.report.Usage.IsRecursive
}

func (mv *mover) transform() error {
	moved := mv.method.Clone()
	body := moved.Body
	statics := mv.sets.StaticFields.Union(mv.sets.StaticMethods)

	switch {
	case mv.op.Static:
		body = rewrite.QualifyStatics(body, statics, mv.locals, mv.op.SourceType)

	case mv.wantsInjection():
		table := map[string]string{}
		for _, f := range mv.report.PrivateFieldReads {
			param := paramNameFor(f, mv.locals)
			table[f] = param
			mv.injected = append(mv.injected, InjectedField{
				Field: f,
				Param: param,
				Type:  mv.sets.FieldTypes[f],
			})
			moved.Params = append(moved.Params, syntax.Param{Type: mv.sets.FieldTypes[f], Name: param})
		}
		body = rewrite.StripThisQualifier(body, table)
		body = rewrite.Rename(body, table)
		body = rewrite.QualifyStatics(body, statics, mv.locals, mv.op.SourceType)

	case mv.report.Usage.NeedsReceiver():
		taken := mv.locals.
			Union(mv.sets.InstanceFields).
			Union(mv.sets.Properties).
			Union(mv.sets.InstanceMethods).
			Union(statics)
		recv := rewrite.ReceiverName(taken)
		mv.receiver = recv
		if mv.report.Usage.UsesInstanceMembers {
			body = rewrite.QualifyMembers(body, mv.sets.InstanceMembers(), mv.locals, recv)
			// Delegate-typed fields and properties are referenced in call
			// shape when invoked.
			body = rewrite.QualifyCalls(body, mv.sets.InstanceMembers(), mv.locals, recv)
		}
		if mv.report.Usage.CallsSiblingMethods || mv.report.Usage.IsRecursive {
			calls := mv.sets.InstanceMethods.Union(resolve.NameSet{mv.method.Name: {}})
			body = rewrite.QualifyCalls(body, calls, mv.locals, recv)
			// Method-group references use a method name without call shape.
			body = rewrite.QualifyMembers(body, calls, mv.locals, recv)
		}
		body = rewrite.ReplaceThis(body, recv)
		body = rewrite.QualifyStatics(body, statics, mv.locals, mv.op.SourceType)
		moved.Params = append([]syntax.Param{{Type: mv.op.SourceType, Name: recv}}, moved.Params...)

	default:
		body = rewrite.QualifyStatics(body, statics, mv.locals, mv.op.SourceType)
	}

	moved.Body = body
	moved.Modifiers = publicModifiers(mv.method.Modifiers)
	mv.moved = moved
	return nil
}

// publicModifiers forces public visibility and drops inheritance modifiers
// that cannot survive on an unrelated type.
func publicModifiers(mods []string) []string {
	out := []string{"public"}
	for _, m := range mods {
		if syntax.IsVisibility(m) {
			continue
		}
		if m == "override" || m == "virtual" || m == "sealed" {
			continue
		}
		out = append(out, m)
	}
	return out
}

func paramNameFor(field string, taken resolve.NameSet) string {
	name := strings.TrimLeft(field, "_")
	if name == "" {
		name = "value"
	}
	name = strings.ToLower(name[:1]) + name[1:]
	for taken.Has(name) {
		name += "Value"
	}
	return name
}

func (mv *mover) buildStub() error {
	m := mv.method
	stub := &syntax.Method{
		Attrs:      nil,
		Modifiers:  append([]string(nil), m.Modifiers...),
		ReturnType: m.ReturnType,
		Name:       m.Name,
		TypeParams: append([]string(nil), m.TypeParams...),
		Where:      append([]syntax.Token(nil), m.Where...),
		HasBody:    true,
	}
	for _, p := range m.Params {
		cp := p
		cp.Modifiers = append([]string(nil), p.Modifiers...)
		cp.Default = append([]syntax.Token(nil), p.Default...)
		stub.Params = append(stub.Params, cp)
	}

	var toks []syntax.Token
	async := m.IsAsync()
	// A bare Task return only disappears under async, where "await x;"
	// consumes it; a non-async Task method must hand the task back.
	returnsValue := m.ReturnType != "void" && !(async && m.ReturnType == "Task")
	if returnsValue {
		toks = append(toks, kw("return"))
	}
	if async && m.ReturnType != "void" {
		toks = append(toks, kw("await"))
	}
	if mv.op.Static {
		toks = append(toks, ident(mv.op.TargetType), punct("."), ident(m.Name))
	} else {
		toks = append(toks, ident(mv.op.ResolvedAccessMember()), punct("."), ident(m.Name))
	}
	toks = append(toks, typeArgTokens(m.TypeParams)...)
	toks = append(toks, punct("("))
	first := true
	arg := func(ts ...syntax.Token) {
		if !first {
			toks = append(toks, punct(","))
		}
		first = false
		toks = append(toks, ts...)
	}
	if mv.receiver != "" {
		arg(kw("this"))
	}
	for _, p := range m.Params {
		var ts []syntax.Token
		for _, mod := range p.Modifiers {
			if mod == "ref" || mod == "out" || mod == "in" {
				ts = append(ts, kw(mod))
			}
		}
		ts = append(ts, ident(p.Name))
		arg(ts...)
	}
	for _, inj := range mv.injected {
		arg(kw("this"), punct("."), ident(inj.Field))
	}
	toks = append(toks, punct(")"), punct(";"))
	stub.Body = toks

	newTd := mv.td.WithMember(mv.mIndex, syntax.Member{Kind: syntax.MethodMember, Method: stub})
	if !mv.op.Static {
		if _, idx := newTd.FindMember(mv.op.ResolvedAccessMember()); idx < 0 {
			newTd = newTd.AppendMember(mv.accessMember())
			mv.accessCreated = true
		}
	}
	mv.stub = stub
	mv.src = mv.src.WithType(mv.tdIndex, newTd)
	return nil
}

// accessMember synthesizes the field or property the stub delegates through,
// initialized with a fresh target instance when the declared type is the
// target type itself.
func (mv *mover) accessMember() syntax.Member {
	name := mv.op.ResolvedAccessMember()
	typ := mv.op.ResolvedAccessType()
	var init []syntax.Token
	if typ == mv.op.TargetType {
		init = []syntax.Token{kw("new"), ident(typ), punct("("), punct(")")}
	}
	kind := mv.op.AccessKind
	if kind == AccessAuto {
		if strings.HasPrefix(name, "_") || name == strings.ToLower(name[:1])+name[1:] {
			kind = AccessField
		} else {
			kind = AccessProperty
		}
	}
	if kind == AccessProperty {
		return syntax.Member{Kind: syntax.PropertyMember, Property: &syntax.Property{
			Modifiers: []string{"public"},
			Type:      typ,
			Name:      name,
			Accessors: []syntax.Token{kw("get"), punct(";"), kw("set"), punct(";")},
			Init:      init,
		}}
	}
	return syntax.Member{Kind: syntax.FieldMember, Field: &syntax.Field{
		Modifiers: []string{"private"},
		Type:      typ,
		Name:      name,
		Init:      init,
	}}
}

func (mv *mover) finish() *Result {
	return &Result{
		Op:            mv.op,
		Source:        mv.src,
		Moved:         mv.moved,
		Receiver:      mv.receiver,
		Injected:      mv.injected,
		AccessCreated: mv.accessCreated,
	}
}

func ident(text string) syntax.Token { return syntax.Token{Kind: syntax.KindIdent, Text: text} }
func punct(text string) syntax.Token { return syntax.Token{Kind: syntax.KindPunct, Text: text} }
func kw(text string) syntax.Token    { return syntax.Token{Kind: syntax.KindKeyword, Text: text} }

func typeArgTokens(params []string) []syntax.Token {
	if len(params) == 0 {
		return nil
	}
	toks := []syntax.Token{punct("<")}
	for i, p := range params {
		if i > 0 {
			toks = append(toks, punct(","))
		}
		toks = append(toks, ident(p))
	}
	return append(toks, punct(">"))
}
