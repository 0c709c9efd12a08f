// Package macro expands shortcode-style macros embedded in markdown before it
// reaches the renderer.
//
// Two forms are recognized:
//
//	{{< figure(src="/img/a.png", alt="A") >}}             inline, output spliced verbatim
//	{{% callout(type="warning") %}}Be careful{{% end %}}  body, inner text handed to the template
//
// Delimiters inside fenced code blocks and inline code spans are left untouched.
// Macro names resolve through a Registry in which project macros shadow the
// built-in set.
package macro
