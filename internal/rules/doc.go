// Package rules implements the selector engine that source definitions are
// written against. A rule is a list of alternatives separated by "||"; each
// alternative is a CSS selector (the default, backed by goquery), an XPath
// expression ("@xpath:" or a leading "/", backed by htmlquery) or a script
// ("@js:", run by otto), optionally followed by "##regex##replacement" and a
// trailing "@js:" step that post-processes the value.
//
//	ul.chapters li            elements
//	a@href                    attribute of the first-level match
//	@text                     text of the current fragment
//	//a[@class='next']/@href  XPath
//	span.time@text##^更新:##   regex removal
//	a@href@js:result.replace('/m/', '/')
package rules
