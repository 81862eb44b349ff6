// Package library compiles CUE component library files into components.
//
// A library file declares components under the top-level "component"
// field:
//
//	component: Card: {
//		category: "layout"
//		root:     "card"
//		elements: card: {type: "container", style: {backgroundColor: "#fff"}, children: ["title"]}
//		elements: title: {type: "text", props: {content: "Title"}}
//		variants: dark: {name: "Dark", style: {backgroundColor: "#000"}}
//		props: heading: {type: "string", default: "Title", bind: {element: "title", props: "content"}}
//	}
//
// The component label is the component id; element, variant and prop labels
// are their ids. Elements start from their type defaults, like elements
// added on the canvas.
package library
