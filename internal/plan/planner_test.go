package plan

import (
	"testing"

	"restruct/internal/move"
	"restruct/internal/syntax"
)

func parseModule(t *testing.T, src string) *syntax.Module {
	t.Helper()
	m, err := syntax.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return m
}

func op(typ, method string) move.Operation {
	return move.Operation{SourceType: typ, Method: method, TargetType: "Pricing"}
}

func keys(ops []move.Operation) []string {
	out := make([]string, 0, len(ops))
	for _, o := range ops {
		out = append(out, o.Key())
	}
	return out
}

const graphSrc = `public class Order
{
    public int A()
    {
        return B() + C();
    }

    public int B()
    {
        return C();
    }

    public int C()
    {
        return 1;
    }

    public int Loner()
    {
        return 7;
    }

    public int Self(int n)
    {
        if (n <= 0)
        {
            return 0;
        }
        return Self(n - 1);
    }
}
`

func TestOrderIndependentKeepsSubmissionOrder(t *testing.T) {
	mod := parseModule(t, graphSrc)
	ops := []move.Operation{op("Order", "Loner"), op("Order", "C")}
	got, dm := Order(mod, ops)
	want := []string{"Order.Loner", "Order.C"}
	for i, k := range keys(got) {
		if k != want[i] {
			t.Fatalf("order: got %v, want %v", keys(got), want)
		}
	}
	if dm.Count("Order.Loner") != 0 || dm.Count("Order.C") != 0 {
		t.Fatalf("independent ops must have zero dependencies: %v", dm)
	}
}

func TestOrderDependentMovesCalleeFirst(t *testing.T) {
	mod := parseModule(t, graphSrc)
	got, dm := Order(mod, []move.Operation{op("Order", "A"), op("Order", "B"), op("Order", "C")})
	want := []string{"Order.C", "Order.B", "Order.A"}
	for i, k := range keys(got) {
		if k != want[i] {
			t.Fatalf("order: got %v, want %v", keys(got), want)
		}
	}
	if dm.Count("Order.A") != 2 || dm.Count("Order.B") != 1 || dm.Count("Order.C") != 0 {
		t.Fatalf("counts: A=%d B=%d C=%d", dm.Count("Order.A"), dm.Count("Order.B"), dm.Count("Order.C"))
	}
}

func TestOrderCountsOnlyBatchMembers(t *testing.T) {
	mod := parseModule(t, graphSrc)
	// B calls C, but C is not in the batch, so B has no intra-batch deps.
	_, dm := Order(mod, []move.Operation{op("Order", "B"), op("Order", "Loner")})
	if dm.Count("Order.B") != 0 {
		t.Fatalf("out-of-batch callee counted: %d", dm.Count("Order.B"))
	}
}

func TestOrderRecursionIsNotADependency(t *testing.T) {
	mod := parseModule(t, graphSrc)
	_, dm := Order(mod, []move.Operation{op("Order", "Self")})
	if dm.Count("Order.Self") != 0 {
		t.Fatalf("self-recursion counted as dependency: %d", dm.Count("Order.Self"))
	}
}

func TestOrderCycleFallsBackToSubmissionOrder(t *testing.T) {
	src := `public class Order
{
    public int Ping(int n)
    {
        return Pong(n);
    }

    public int Pong(int n)
    {
        return Ping(n);
    }
}
`
	mod := parseModule(t, src)
	got, dm := Order(mod, []move.Operation{op("Order", "Pong"), op("Order", "Ping")})
	want := []string{"Order.Pong", "Order.Ping"}
	for i, k := range keys(got) {
		if k != want[i] {
			t.Fatalf("cycle order: got %v, want %v", keys(got), want)
		}
	}
	if dm.Count("Order.Ping") != 1 || dm.Count("Order.Pong") != 1 {
		t.Fatalf("cycle counts: %d/%d", dm.Count("Order.Ping"), dm.Count("Order.Pong"))
	}
}

func TestOrderUnresolvedMethodHasNoDeps(t *testing.T) {
	mod := parseModule(t, graphSrc)
	got, dm := Order(mod, []move.Operation{op("Order", "Missing"), op("Order", "C")})
	if dm.Count("Order.Missing") != 0 {
		t.Fatalf("unresolved op contributed deps: %d", dm.Count("Order.Missing"))
	}
	if len(got) != 2 {
		t.Fatalf("unresolved op dropped from plan: %v", keys(got))
	}
}

func TestOrderConstructorCallsExcluded(t *testing.T) {
	src := `public class Order
{
    public Pricing Make()
    {
        return new Pricing();
    }

    public int Pricing()
    {
        return 1;
    }
}
`
	mod := parseModule(t, src)
	_, dm := Order(mod, []move.Operation{op("Order", "Make"), op("Order", "Pricing")})
	if dm.Count("Order.Make") != 0 {
		t.Fatalf("constructor call counted as dependency: %d", dm.Count("Order.Make"))
	}
}

func TestOrderComparisonIsNotACall(t *testing.T) {
	src := `public class Order
{
    public int Cheap(int x)
    {
        if (Tax < x)
        {
            return 0;
        }
        return 1;
    }

    public int Tax()
    {
        return 1;
    }
}
`
	mod := parseModule(t, src)
	_, dm := Order(mod, []move.Operation{op("Order", "Cheap"), op("Order", "Tax")})
	if dm.Count("Order.Cheap") != 0 {
		t.Fatalf("comparison counted as a call dependency: %d", dm.Count("Order.Cheap"))
	}
}

func TestOrderGenericCallCounted(t *testing.T) {
	src := `public class Order
{
    public int Use(int a, int b)
    {
        return Pick<int>(a, b);
    }

    public T Pick<T>(T a, T b)
    {
        return a;
    }
}
`
	mod := parseModule(t, src)
	got, dm := Order(mod, []move.Operation{op("Order", "Use"), op("Order", "Pick")})
	if dm.Count("Order.Use") != 1 {
		t.Fatalf("generic invocation not counted: %d", dm.Count("Order.Use"))
	}
	if got[0].Key() != "Order.Pick" {
		t.Fatalf("callee must move first: %v", keys(got))
	}
}
