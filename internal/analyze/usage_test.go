package analyze

import (
	"testing"

	"restruct/internal/resolve"
	"restruct/internal/syntax"
)

func setup(t *testing.T, src, typeName, method string) (*syntax.Method, resolve.MemberSets) {
	t.Helper()
	mod, err := syntax.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	td, _ := mod.FindType(typeName)
	if td == nil {
		t.Fatalf("type %s not found", typeName)
	}
	mem, idx := td.FindMember(method)
	if idx < 0 {
		t.Fatalf("method %s not found", method)
	}
	return mem.Method, resolve.Collect(td)
}

const calcSrc = `public class Calc
{
    private int _base;
    private int _scale;
    public int Bound;

    public int Limit { get; set; }

    public int PureAdd(int a, int b)
    {
        return a + b;
    }

    public int FromPrivate(int x)
    {
        return x * _base + _scale;
    }

    public int FromPublicField(int x)
    {
        return x + Bound;
    }

    public int FromProperty(int x)
    {
        return x + Limit;
    }

    public int ViaSibling(int x)
    {
        return PureAdd(x, 1);
    }

    public int Fact(int n)
    {
        if (n <= 1)
        {
            return 1;
        }
        return n * Fact(n - 1);
    }

    public int ThisQualified()
    {
        return this._base;
    }
}
`

func inspect(t *testing.T, method string) Report {
	t.Helper()
	m, sets := setup(t, calcSrc, "Calc", method)
	return Inspect(m, sets, resolve.Heuristic{})
}

func TestInspectPure(t *testing.T) {
	rep := inspect(t, "PureAdd")
	if rep.Usage.NeedsReceiver() {
		t.Fatalf("pure method should not need a receiver: %+v", rep.Usage)
	}
	if len(rep.PrivateFieldReads) != 0 || rep.BeyondPrivateFields {
		t.Fatalf("pure method report: %+v", rep)
	}
}

func TestInspectPrivateFieldReads(t *testing.T) {
	rep := inspect(t, "FromPrivate")
	if !rep.Usage.UsesInstanceMembers {
		t.Fatalf("expected instance member use")
	}
	if rep.BeyondPrivateFields {
		t.Fatalf("only private fields are read: %+v", rep)
	}
	if len(rep.PrivateFieldReads) != 2 || rep.PrivateFieldReads[0] != "_base" || rep.PrivateFieldReads[1] != "_scale" {
		t.Fatalf("private reads in first-use order: %v", rep.PrivateFieldReads)
	}
}

func TestInspectBeyondPrivate(t *testing.T) {
	if rep := inspect(t, "FromPublicField"); !rep.BeyondPrivateFields {
		t.Fatalf("public field read must set BeyondPrivateFields: %+v", rep)
	}
	if rep := inspect(t, "FromProperty"); !rep.BeyondPrivateFields || !rep.Usage.UsesInstanceMembers {
		t.Fatalf("property read must set BeyondPrivateFields: %+v", rep)
	}
}

func TestInspectSiblingCall(t *testing.T) {
	rep := inspect(t, "ViaSibling")
	if !rep.Usage.CallsSiblingMethods || rep.Usage.IsRecursive {
		t.Fatalf("sibling call: %+v", rep.Usage)
	}
	if !rep.Usage.NeedsReceiver() {
		t.Fatalf("sibling call needs a receiver")
	}
}

func TestInspectRecursion(t *testing.T) {
	rep := inspect(t, "Fact")
	if !rep.Usage.IsRecursive || rep.Usage.CallsSiblingMethods {
		t.Fatalf("recursion: %+v", rep.Usage)
	}
}

func TestInspectThisQualified(t *testing.T) {
	rep := inspect(t, "ThisQualified")
	if !rep.Usage.UsesInstanceMembers {
		t.Fatalf("this-qualified read is still instance use: %+v", rep)
	}
	if len(rep.PrivateFieldReads) != 1 || rep.PrivateFieldReads[0] != "_base" {
		t.Fatalf("this-qualified private read: %v", rep.PrivateFieldReads)
	}
}

func TestInspectLocalsShadowMembers(t *testing.T) {
	src := `public class C
{
    private int _v;

    public int Go(int _v)
    {
        return _v;
    }
}
`
	m, sets := setup(t, src, "C", "Go")
	rep := Inspect(m, sets, resolve.Heuristic{})
	if rep.Usage.UsesInstanceMembers {
		t.Fatalf("parameter shadows the field: %+v", rep)
	}
}

func TestInspectStaticFieldUses(t *testing.T) {
	src := `public class C
{
    private static int _seq;

    public int Next()
    {
        _seq = _seq + 1;
        return _seq;
    }
}
`
	m, sets := setup(t, src, "C", "Next")
	rep := Inspect(m, sets, resolve.Heuristic{})
	if rep.Usage.NeedsReceiver() {
		t.Fatalf("static-only use needs no receiver: %+v", rep.Usage)
	}
	if len(rep.StaticFieldUses) != 1 || rep.StaticFieldUses[0] != "_seq" {
		t.Fatalf("static field uses: %v", rep.StaticFieldUses)
	}
}

func TestInspectNoBody(t *testing.T) {
	src := `public class C
{
    public int Go(int x);
}
`
	m, sets := setup(t, src, "C", "Go")
	rep := Inspect(m, sets, resolve.Heuristic{})
	if rep.Usage.NeedsReceiver() || len(rep.PrivateFieldReads) != 0 {
		t.Fatalf("bodyless method report: %+v", rep)
	}
}

func TestInspectQualifiedOtherObject(t *testing.T) {
	src := `public class C
{
    private int _v;

    public int Go(C other)
    {
        return other._v;
    }
}
`
	m, sets := setup(t, src, "C", "Go")
	rep := Inspect(m, sets, resolve.Heuristic{})
	if rep.Usage.UsesInstanceMembers {
		t.Fatalf("qualified access through another object is not receiver use: %+v", rep)
	}
}

func TestInspectDelegateFieldInvocation(t *testing.T) {
	src := `public class C
{
    private Action _callback;

    public void Fire()
    {
        _callback();
    }
}
`
	m, sets := setup(t, src, "C", "Fire")
	rep := Inspect(m, sets, resolve.Heuristic{})
	if !rep.Usage.UsesInstanceMembers {
		t.Fatalf("invoking a delegate field is instance use: %+v", rep)
	}
	if len(rep.PrivateFieldReads) != 1 || rep.PrivateFieldReads[0] != "_callback" {
		t.Fatalf("delegate field read: %v", rep.PrivateFieldReads)
	}
	if rep.Usage.CallsSiblingMethods {
		t.Fatalf("a delegate field is not a sibling method: %+v", rep.Usage)
	}
}

func TestInspectMethodGroupReference(t *testing.T) {
	src := `public class C
{
    public void Clear()
    {
        return;
    }

    public void Hook()
    {
        Register(Clear);
    }
}
`
	m, sets := setup(t, src, "C", "Hook")
	rep := Inspect(m, sets, resolve.Heuristic{})
	if !rep.Usage.CallsSiblingMethods {
		t.Fatalf("bare method-group reference is a sibling use: %+v", rep.Usage)
	}
	if rep.Usage.IsRecursive || rep.Usage.UsesInstanceMembers {
		t.Fatalf("misclassified: %+v", rep.Usage)
	}
}
