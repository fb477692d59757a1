// Package lang implements the Polly markup language: a lexer, a hand-written
// recursive descent parser, and a tree-walking renderer that turns templates
// plus a JSON-like variable scope into HTML.
//
// # Syntax
//
// Every construct starts with a sigil:
//
//	/tag.class#id(key=value flag){ children }   element
//	&name(@a, @b){ body }                       component definition
//	&name(@x, @y)                               component call
//	@path.to.value                              variable
//	$std.each(array=@items, component=&item)   function call
//	\}                                          escaped operator
//
// Anything else is text. Words keep at most one space on either side, so
// "Hello   World" renders as "Hello World".
//
// # Example
//
//	&item(@name){ /li{@name} }
//	/html{
//	  /body{
//	    /h1.title{Hello @user.name!}
//	    /ul{ $std.each(array=@items, component=&item) }
//	    /br()
//	  }
//	}
//
// # Pipeline
//
//	source --[Lex]--> []Lexeme --[Parse]--> Document --[Renderer]--> string
//
// Parsing never aborts: a document is a flat sequence of [Node] values, each
// holding either a [Token] or the [ParseError] that ended its sequence.
// Rendering walks that tree depth-first against a [Registry] of components
// and native functions. [Template] ties the stages together with imported
// component libraries and locale overlays.
//
// Errors carry byte offsets into their [Source], and [Diagnose] turns any
// error from this package into a file:line:col diagnostic with a caret
// underline.
package lang
