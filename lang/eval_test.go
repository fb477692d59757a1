package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func render(t *testing.T, input string, vars Value, opts ...Option) (string, error) {
	t.Helper()

	tmpl, err := NewTemplate(t.Context(), "test.polly", input, opts...)
	if err != nil {
		t.Fatalf("template error: %v", err)
	}

	return tmpl.Render(t.Context(), vars)
}

func TestRender_Output(t *testing.T) {
	vars := Object(map[string]Value{
		"world": String("World"),
		"user": Object(map[string]Value{
			"name": String("Ann"),
			"age":  Int(41),
		}),
		"tags": Array(String("a"), String("b")),
	})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "nested elements",
			input: "/html{/body{/p{Hello World!}}}",
			want:  "<html><body><p>Hello World!</p></body></html>",
		},
		{
			name:  "variable",
			input: "/p{Hello @world!}",
			want:  "<p>Hello World!</p>",
		},
		{
			name:  "member access",
			input: "@user.name is @user.age",
			want:  "Ann is 41",
		},
		{
			name:  "missing variable is empty",
			input: "[@nothing]",
			want:  "[]",
		},
		{
			name:  "array concatenates",
			input: "@tags",
			want:  "ab",
		},
		{
			name:  "void element",
			input: "/br{}/hr{}",
			want:  "<br><hr>",
		},
		{
			name:  "attributes in order",
			input: `/img(src="a.png" alt=logo)`,
			want:  `<img src="a.png" alt="logo">`,
		},
		{
			name:  "class and id",
			input: "/div.card.wide#main{x}",
			want:  `<div class="card wide" id="main">x</div>`,
		},
		{
			name:  "class attribute joins class list",
			input: "/p.a(class=b){x}",
			want:  `<p class="a b">x</p>`,
		},
		{
			name:  "boolean attribute",
			input: "/input(disabled)",
			want:  "<input disabled>",
		},
		{
			name:  "attribute redefined",
			input: "/a(href=x href=y){l}",
			want:  `<a href="y">l</a>`,
		},
		{
			name:  "escapes",
			input: `a\{b\}c\@d`,
			want:  "a{b}c@d",
		},
		{
			name:  "balanced bare braces",
			input: "f(x) and {y}",
			want:  "f(x) and {y}",
		},
		{
			name:  "trailing backslash ends output",
			input: `abc\`,
			want:  "abc",
		},
		{
			name:  "component",
			input: "&greet(@name){/b{@name}}&greet(@user.name)",
			want:  "<b>Ann</b>",
		},
		{
			name:  "component without arguments",
			input: "&hr{/hr}&hr&hr",
			want:  "<hr><hr>",
		},
		{
			name:  "missing actual binds null",
			input: "&show(@v){[@v]}&show(@nope)",
			want:  "[]",
		},
		{
			name:  "element resource",
			input: "&body{hi}/main&body",
			want:  "<main>hi</main>",
		},
		{
			name:  "definition inside children",
			input: "/div{&x{X}}&x",
			want:  "<div></div>X",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render(t, tt.input, vars)
			if err != nil {
				t.Fatalf("render error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRender_Errors(t *testing.T) {
	vars := Object(map[string]Value{
		"name": String("x"),
		"list": Array(Int(1)),
	})

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "no such component", input: "&missing", want: ErrNoSuchComponent},
		{name: "no such function", input: "$missing()", want: ErrNoSuchFunction},
		{name: "string is not an object", input: "@name.first", want: ErrNotAnObjectOrNull},
		{name: "array is not an object", input: "@list.first", want: ErrNotAnObjectOrNull},
		{name: "missing intermediate", input: "@a.b", want: ErrNotAnObjectOrNull},
		{
			name:  "wrong number of arguments",
			input: "&pair(@a, @b){x}&pair(@a)",
			want:  ErrWrongNumberOfArguments,
		},
		{
			name:  "component passed to component",
			input: "&wrap(@a){x}&other{y}&wrap(&other)",
			want:  ErrCompPassedToComp,
		},
		{name: "syntax error", input: "ok /p{", want: ErrAST},
		{name: "recursion", input: "&loop{&loop}&loop", want: ErrMaxDepthExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render(t, tt.input, vars)
			if err == nil {
				t.Fatalf("expected error %v, got output %q", tt.want, got)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}

			if got != "" {
				t.Errorf("expected no output, got %q", got)
			}
		})
	}
}

func TestRender_WrongNumberOfArguments(t *testing.T) {
	_, err := render(t, "&pair(@a, @b){x}&pair(@a)", Null())

	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected render error, got %v", err)
	}

	if re.Expected != 2 || re.Actual != 1 {
		t.Errorf("expected 2 and 1, got %d and %d", re.Expected, re.Actual)
	}

	if re.Name != "pair" {
		t.Errorf("expected name pair, got %q", re.Name)
	}
}

func TestRender_MaxDepth(t *testing.T) {
	_, err := render(t, "&a{&b}&b{&a}&a", Null(), WithMaxDepth(4))

	var re *RenderError
	if !errors.As(err, &re) || re.Kind != RenderMaxDepthExceeded {
		t.Fatalf("expected max depth error, got %v", err)
	}

	if got := strings.Join(re.Chain, " "); got != "a b a b a" {
		t.Errorf("unexpected chain %q", got)
	}
}

func TestRender_MaxDepthMessage(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   string
		arrows int
	}{
		{
			name:   "self recursion is counted",
			src:    "&loop{&loop}&loop",
			want:   "maximum component depth exceeded: loop ×",
			arrows: 0,
		},
		{
			name:   "long cycle keeps both ends",
			src:    "&a{&b}&b{&a}&a",
			want:   "a → b → a → … ",
			arrows: 2*chainEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := render(t, tt.src, Null(), WithMaxDepth(100))

			var re *RenderError
			if !errors.As(err, &re) || re.Kind != RenderMaxDepthExceeded {
				t.Fatalf("expected max depth error, got %v", err)
			}

			msg := re.Error()
			if !strings.HasPrefix(msg, tt.want) {
				t.Errorf("expected prefix %q, got %q", tt.want, msg)
			}

			if n := strings.Count(msg, "→"); n != tt.arrows {
				t.Errorf("expected %d arrows, got %d in %q", tt.arrows, n, msg)
			}
		})
	}
}

func TestFormatChain(t *testing.T) {
	tests := []struct {
		chain []string
		want  string
	}{
		{chain: nil, want: ""},
		{chain: []string{"a"}, want: "a"},
		{chain: []string{"page", "row", "row", "row", "cell"}, want: "page → row ×3 → cell"},
		{
			chain: []string{"a", "b", "a", "b", "a", "b", "a", "b", "a"},
			want:  "a → b → a → … 3 more … → a → b → a",
		},
	}

	for _, tt := range tests {
		if got := formatChain(tt.chain); got != tt.want {
			t.Errorf("formatChain(%q): expected %q, got %q", tt.chain, tt.want, got)
		}
	}
}

func TestRender_SyntaxErrorLocation(t *testing.T) {
	_, err := render(t, "line one\n/p{a}}", Null())

	d, ok := Diagnose(err)
	if !ok {
		t.Fatalf("expected located error, got %v", err)
	}

	if d.Line != 2 || d.Col != 6 {
		t.Errorf("expected 2:6, got %d:%d", d.Line, d.Col)
	}
}

func TestRender_Function(t *testing.T) {
	shout := func(_ *Renderer, args Args) (string, error) {
		v, _ := args.JSON("text")

		return strings.ToUpper(v.String()), nil
	}

	fail := func(*Renderer, Args) (string, error) {
		return "", errors.New("boom")
	}

	wrap := func(r *Renderer, args Args) (string, error) {
		c, ok := args.Component("body")
		if !ok {
			return "", errors.New("missing body")
		}

		out, err := r.RenderComponent(c, Scope{"v": String(r.Locale())})
		if err != nil {
			return "", err
		}

		return "[" + out + "]", nil
	}

	fns := map[string]Function{
		"str.upper": shout,
		"fail":      fail,
		"wrap":      wrap,
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "dotted function",
			input: "$str.upper(text=@msg)!",
			want:  "HI!",
		},
		{
			name:  "function renders component",
			input: "&inner(@v){@v}$wrap(body=&inner)",
			want:  "[de]",
		},
		{
			name:    "function error",
			input:   "$fail()",
			wantErr: ErrFunction,
		},
		{
			name:    "render error passes through",
			input:   "&inner(@v){@v.x}$wrap(body=&inner)",
			wantErr: ErrNotAnObjectOrNull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render(t, tt.input,
				Object(map[string]Value{"msg": String("hi")}),
				WithFunctions(fns), WithLocale("de"))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("render error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRender_Canceled(t *testing.T) {
	tmpl, err := NewTemplate(t.Context(), "", "&a{x}&a")
	if err != nil {
		t.Fatalf("template error: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := tmpl.Render(ctx, Null()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context canceled, got %v", err)
	}
}
