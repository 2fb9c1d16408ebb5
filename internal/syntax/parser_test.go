package syntax

import (
	"testing"
)

func mustParse(t *testing.T, src string) *Module {
	t.Helper()
	m, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return m
}

func TestParseModuleShape(t *testing.T) {
	src := `using System;
using static System.Math;
using IO = System.IO;

namespace Shop.Billing;

public class Order
{
    private int _id;
    private List<Item> _items = new List<Item>();

    public int Count { get; set; }

    public int Twice(int x) => x * 2;

    public Order(int id)
    {
        _id = id;
    }

    public void Add(Item item)
    {
        _items.Add(item);
    }

    public class Line
    {
        public int Qty;
    }
}
`
	m := mustParse(t, src)

	if len(m.Usings) != 3 {
		t.Fatalf("expected 3 usings, got %d", len(m.Usings))
	}
	if m.Usings[0].Path != "System" || m.Usings[0].Static || m.Usings[0].Alias != "" {
		t.Fatalf("using 0: %+v", m.Usings[0])
	}
	if m.Usings[1].Path != "System.Math" || !m.Usings[1].Static {
		t.Fatalf("using 1: %+v", m.Usings[1])
	}
	if m.Usings[2].Path != "System.IO" || m.Usings[2].Alias != "IO" {
		t.Fatalf("using 2: %+v", m.Usings[2])
	}
	if m.Namespace != "Shop.Billing" || m.NamespaceStyle != NamespaceFile {
		t.Fatalf("namespace: %q style %d", m.Namespace, m.NamespaceStyle)
	}

	td, _ := m.FindType("Order")
	if td == nil {
		t.Fatalf("type Order not found")
	}
	if td.Keyword != "class" || len(td.Modifiers) != 1 || td.Modifiers[0] != "public" {
		t.Fatalf("type header: %+v", td)
	}
	if len(td.Members) != 7 {
		t.Fatalf("expected 7 members, got %d", len(td.Members))
	}

	id := td.Members[0]
	if id.Kind != FieldMember || id.Field.Type != "int" || id.Field.Name != "_id" {
		t.Fatalf("member 0: %+v", id)
	}
	items := td.Members[1]
	if items.Kind != FieldMember || items.Field.Type != "List<Item>" {
		t.Fatalf("member 1 type: %q", items.Field.Type)
	}
	if len(items.Field.Init) == 0 {
		t.Fatalf("member 1 missing initializer")
	}

	count := td.Members[2]
	if count.Kind != PropertyMember || count.Property.Name != "Count" || count.Property.ExprBody {
		t.Fatalf("member 2: %+v", count)
	}

	twice := td.Members[3]
	if twice.Kind != MethodMember || !twice.Method.ExprBody || !twice.Method.HasBody {
		t.Fatalf("member 3: %+v", twice)
	}

	ctor := td.Members[4]
	if ctor.Kind != MethodMember || ctor.Method.ReturnType != "" || ctor.Method.Name != "Order" {
		t.Fatalf("member 4: %+v", ctor)
	}
	if len(ctor.Method.Params) != 1 || ctor.Method.Params[0].Type != "int" || ctor.Method.Params[0].Name != "id" {
		t.Fatalf("ctor params: %+v", ctor.Method.Params)
	}

	add := td.Members[5]
	if add.Kind != MethodMember || add.Method.ReturnType != "void" || add.Method.ExprBody {
		t.Fatalf("member 5: %+v", add)
	}

	nested := td.Members[6]
	if nested.Kind != NestedTypeMember || nested.Nested.Name != "Line" {
		t.Fatalf("member 6: %+v", nested)
	}
}

func TestParseBlockNamespace(t *testing.T) {
	src := `namespace Shop
{
    public class A
    {
    }

    public class B
    {
    }
}
`
	m := mustParse(t, src)
	if m.Namespace != "Shop" || m.NamespaceStyle != NamespaceBlock {
		t.Fatalf("namespace: %q style %d", m.Namespace, m.NamespaceStyle)
	}
	if len(m.Types) != 2 {
		t.Fatalf("expected 2 types, got %d", len(m.Types))
	}
}

func TestParseGenericsAndConstraints(t *testing.T) {
	src := `public class Repo<T> : Base, IList<T>
{
    public T Pick<T>(T a, T b) where T : class
    {
        return a;
    }

    public string? Find(int[] ids);
}
`
	m := mustParse(t, src)
	td := m.Types[0]
	if len(td.TypeParams) != 1 || td.TypeParams[0] != "T" {
		t.Fatalf("type params: %v", td.TypeParams)
	}
	if len(td.BaseList) != 2 || td.BaseList[1] != "IList<T>" {
		t.Fatalf("base list: %v", td.BaseList)
	}
	pick := td.Members[0].Method
	if len(pick.TypeParams) != 1 || len(pick.Where) == 0 {
		t.Fatalf("pick: params %v where %v", pick.TypeParams, pick.Where)
	}
	find := td.Members[1].Method
	if find.ReturnType != "string?" || find.HasBody {
		t.Fatalf("find: %+v", find)
	}
	if find.Params[0].Type != "int[]" {
		t.Fatalf("find param type: %q", find.Params[0].Type)
	}
}

func TestParseExpressionBodiedProperty(t *testing.T) {
	src := `public class Order
{
    private int _count;

    public int Total => _count;
}
`
	m := mustParse(t, src)
	total := m.Types[0].Members[1]
	if total.Kind != PropertyMember || !total.Property.ExprBody {
		t.Fatalf("total: %+v", total)
	}
	if len(total.Property.Accessors) != 1 || total.Property.Accessors[0].Text != "_count" {
		t.Fatalf("accessors: %v", texts(total.Property.Accessors))
	}
}

func TestParseParamModifiersAndDefaults(t *testing.T) {
	src := `public class Calc
{
    public bool TryGet(ref int total, out string label, int retries = 3)
    {
        label = "";
        return true;
    }
}
`
	m := mustParse(t, src)
	params := m.Types[0].Members[0].Method.Params
	if len(params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(params))
	}
	if len(params[0].Modifiers) != 1 || params[0].Modifiers[0] != "ref" {
		t.Fatalf("param 0: %+v", params[0])
	}
	if len(params[1].Modifiers) != 1 || params[1].Modifiers[0] != "out" {
		t.Fatalf("param 1: %+v", params[1])
	}
	if len(params[2].Default) != 1 || params[2].Default[0].Text != "3" {
		t.Fatalf("param 2 default: %v", texts(params[2].Default))
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"public class Order {",
		"public class Order { public int }",
		"namespace A; namespace B;",
		"public class C { public event Action Changed; }",
	}
	for _, src := range cases {
		if _, err := Parse(src); err == nil {
			t.Fatalf("expected parse error for %q", src)
		}
	}
}
