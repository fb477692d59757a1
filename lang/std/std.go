// Package std provides the standard native functions available to templates
// as $std.name(...).
//
// Functions take their arguments by name:
//
//	$std.each(array=@items, component=&item)
//	$std.if(condition=@show, component=&banner, json=@user)
//	$std.if_else(condition=@user, component=&hello, else=&login)
//	$std.markdown(source=@body)
//	$std.date(value=@posted, layout=@format)
//	$std.number(value=@total)
//	$std.length(value=@items)
//	$std.join(array=@tags, separator=@comma)
package std

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ardnew/polly/lang"
)

// Prefix is prepended to the name of every standard function.
const Prefix = "std."

// Predefined errors (sentinel values).
var (
	ErrMissingArgument  = lang.NewError("missing argument")
	ErrNotArray         = lang.NewError("argument is not an array")
	ErrNotComponent     = lang.NewError("argument is not a component")
	ErrNotNumber        = lang.NewError("argument is not a number")
	ErrInvalidDate      = lang.NewError("invalid date")
	ErrMarkdownRender   = lang.NewError("failed to render markdown")
	ErrDestructureValue = lang.NewError(
		"component has several parameters but the value is not an object",
	)
)

// Functions returns the standard functions keyed by their full names.
func Functions() map[string]lang.Function {
	return map[string]lang.Function{
		Prefix + "each":     Each,
		Prefix + "if":       If,
		Prefix + "if_else":  IfElse,
		Prefix + "markdown": Markdown,
		Prefix + "date":     Date,
		Prefix + "number":   Number,
		Prefix + "length":   Length,
		Prefix + "join":     Join,
	}
}

func missing(name string) error {
	return ErrMissingArgument.
		With(slog.String("argument", name)).
		Wrap(lang.NewError(name))
}

func component(args lang.Args, name string) (*lang.Component, error) {
	if _, ok := args[name]; !ok {
		return nil, missing(name)
	}

	c, ok := args.Component(name)
	if !ok {
		return nil, ErrNotComponent.Wrap(lang.NewError(name))
	}

	return c, nil
}

// Each renders component once per element of array, concatenating the
// output in array order.
//
// A component without parameters ignores the element, one with a single
// parameter receives the whole element, and one with several parameters
// receives the fields of the same names from each element. The first
// element must then be an object; later elements that are not are skipped.
func Each(r *lang.Renderer, args lang.Args) (string, error) {
	arr, ok := args.JSON("array")
	if !ok {
		return "", missing("array")
	}

	if arr.Kind() != lang.KindArray {
		return "", ErrNotArray.With(slog.String("kind", arr.Kind().String()))
	}

	c, err := component(args, "component")
	if err != nil {
		return "", err
	}

	elems := arr.Array()

	if len(c.Params) > 1 && len(elems) > 0 && elems[0].Kind() != lang.KindObject {
		return "", ErrDestructureValue.With(slog.String("component", c.Name))
	}

	var b strings.Builder

	for _, elem := range elems {
		scope := lang.Scope{}

		switch len(c.Params) {
		case 0:
		case 1:
			scope[c.Params[0]] = elem
		default:
			if elem.Kind() != lang.KindObject {
				continue
			}

			for _, p := range c.Params {
				if v, ok := elem.Get(p); ok {
					scope[p] = v
				}
			}
		}

		out, err := r.RenderComponent(c, scope)
		if err != nil {
			return "", err
		}

		b.WriteString(out)
	}

	return b.String(), nil
}

// If renders component when condition is truthy and nothing otherwise.
// A missing condition is null and therefore false.
func If(r *lang.Renderer, args lang.Args) (string, error) {
	cond, _ := args.JSON("condition")
	if !cond.Truthy() {
		return "", nil
	}

	return conditional(r, args, "component")
}

// IfElse renders component when condition is truthy and else otherwise.
func IfElse(r *lang.Renderer, args lang.Args) (string, error) {
	cond, _ := args.JSON("condition")
	if cond.Truthy() {
		return conditional(r, args, "component")
	}

	return conditional(r, args, "else")
}

// conditional renders the component argument name, binding the optional
// json argument to its parameters the way [Each] binds elements. A single
// parameter takes the field of its own name when json is an object.
func conditional(r *lang.Renderer, args lang.Args, name string) (string, error) {
	c, err := component(args, name)
	if err != nil {
		return "", err
	}

	scope := lang.Scope{}

	if json, ok := args.JSON("json"); ok {
		switch len(c.Params) {
		case 0:
		case 1:
			p := c.Params[0]
			if json.Kind() == lang.KindObject {
				if v, ok := json.Get(p); ok {
					scope[p] = v
				}
			} else {
				scope[p] = json
			}
		default:
			if json.Kind() != lang.KindObject {
				return "", ErrDestructureValue.With(slog.String("component", c.Name))
			}

			for k, v := range json.Fields() {
				scope[k] = v
			}
		}
	}

	return r.RenderComponent(c, scope)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders the string source as GitHub flavored Markdown.
func Markdown(_ *lang.Renderer, args lang.Args) (string, error) {
	src, ok := args.JSON("source")
	if !ok {
		return "", missing("source")
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src.String()), &buf); err != nil {
		return "", ErrMarkdownRender.Wrap(err)
	}

	return buf.String(), nil
}

// Date formats value, a date string in any common layout or a Unix time in
// seconds, with the Go time layout given by layout. Month and day names are
// translated to the render locale. Without a layout the locale's medium date
// style is used.
func Date(r *lang.Renderer, args lang.Args) (string, error) {
	v, ok := args.JSON("value")
	if !ok {
		return "", missing("value")
	}

	loc := mondayLocale(r.Locale())

	t, err := parseDate(v, loc)
	if err != nil {
		return "", err
	}

	layout := mediumLayout(loc)
	if l, ok := args.JSON("layout"); ok && l.String() != "" {
		layout = l.String()
	}

	return monday.Format(t, layout, loc), nil
}

func parseDate(v lang.Value, loc monday.Locale) (time.Time, error) {
	switch v.Kind() {
	case lang.KindInt, lang.KindFloat:
		return time.Unix(v.Int(), 0).UTC(), nil

	case lang.KindString:
		monthFirst := loc == monday.LocaleEnUS

		t, err := dateparse.ParseIn(v.String(), time.UTC,
			dateparse.PreferMonthFirst(monthFirst))
		if err != nil {
			return time.Time{}, ErrInvalidDate.
				With(slog.String("value", v.String())).
				Wrap(err)
		}

		return t, nil
	}

	return time.Time{}, ErrInvalidDate.With(slog.String("kind", v.Kind().String()))
}

var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_be": monday.LocaleNlBE,
	"ru":    monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"cs":    monday.LocaleCsCZ,
	"da":    monday.LocaleDaDK,
	"fi":    monday.LocaleFiFI,
	"sv":    monday.LocaleSvSE,
	"nb":    monday.LocaleNbNO,
	"ja":    monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_tw": monday.LocaleZhTW,
	"ko":    monday.LocaleKoKR,
	"tr":    monday.LocaleTrTR,
	"uk":    monday.LocaleUkUA,
}

// mondayLocale maps a locale tag to a monday locale, trying the full tag
// before its language and falling back to US English.
func mondayLocale(tag string) monday.Locale {
	tag = strings.ToLower(strings.ReplaceAll(tag, "-", "_"))

	if loc, ok := mondayLocales[tag]; ok {
		return loc
	}

	if base, _, ok := strings.Cut(tag, "_"); ok {
		if loc, ok := mondayLocales[base]; ok {
			return loc
		}
	}

	return monday.LocaleEnUS
}

func mediumLayout(loc monday.Locale) string {
	switch loc {
	case monday.LocaleEnUS:
		return "Jan 2, 2006"
	case monday.LocaleDeDE:
		return "2. Jan. 2006"
	case monday.LocaleJaJP, monday.LocaleZhCN, monday.LocaleZhTW:
		return "2006年1月2日"
	case monday.LocaleKoKR:
		return "2006년 1월 2일"
	default:
		return "2 Jan 2006"
	}
}

// Number formats a number with the digit grouping and decimal separator of
// the render locale.
func Number(r *lang.Renderer, args lang.Args) (string, error) {
	v, ok := args.JSON("value")
	if !ok {
		return "", missing("value")
	}

	var n any

	switch v.Kind() {
	case lang.KindInt:
		n = v.Int()
	case lang.KindFloat:
		n = v.Float()
	case lang.KindString:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return "", ErrNotNumber.With(slog.String("value", v.String()))
		}

		n = f
	default:
		return "", ErrNotNumber.With(slog.String("kind", v.Kind().String()))
	}

	tag, err := language.Parse(r.Locale())
	if err != nil {
		tag = language.English
	}

	return message.NewPrinter(tag).Sprintf("%v", number.Decimal(n)), nil
}

// Length returns the number of elements of an array, fields of an object
// or characters of a string. Null has length 0.
func Length(_ *lang.Renderer, args lang.Args) (string, error) {
	v, _ := args.JSON("value")

	n := v.Len()
	if v.Kind() == lang.KindString {
		n = utf8.RuneCountInString(v.String())
	}

	return strconv.Itoa(n), nil
}

// Join concatenates the elements of array separated by separator, which
// defaults to ", ".
func Join(_ *lang.Renderer, args lang.Args) (string, error) {
	arr, ok := args.JSON("array")
	if !ok {
		return "", missing("array")
	}

	if arr.Kind() != lang.KindArray {
		return "", ErrNotArray.With(slog.String("kind", arr.Kind().String()))
	}

	sep := ", "
	if s, ok := args.JSON("separator"); ok {
		sep = s.String()
	}

	parts := make([]string, len(arr.Array()))
	for i, e := range arr.Array() {
		parts[i] = e.String()
	}

	return strings.Join(parts, sep), nil
}
