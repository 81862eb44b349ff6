package model

import "strings"

// styleKeys is the closed catalogue of style properties an element may carry.
var styleKeys = map[string]bool{
	// position and box
	"position": true, "top": true, "left": true, "right": true, "bottom": true,
	"width": true, "height": true, "minWidth": true, "maxWidth": true,
	"minHeight": true, "maxHeight": true, "margin": true, "padding": true,
	"zIndex": true, "overflow": true, "display": true, "boxSizing": true,

	// flex and grid
	"flexDirection": true, "justifyContent": true, "alignItems": true,
	"alignSelf": true, "flexWrap": true, "flexGrow": true, "flexShrink": true,
	"flexBasis": true, "gap": true, "gridTemplateColumns": true,
	"gridTemplateRows": true, "gridColumn": true, "gridRow": true,

	// paint
	"backgroundColor": true, "backgroundImage": true, "backgroundSize": true,
	"backgroundPosition": true, "color": true, "opacity": true,
	"border": true, "borderColor": true, "borderWidth": true, "borderStyle": true,
	"borderRadius": true, "boxShadow": true, "filter": true, "transform": true,
	"transition": true, "cursor": true, "objectFit": true,

	// typography
	"fontFamily": true, "fontSize": true, "fontWeight": true, "fontStyle": true,
	"lineHeight": true, "letterSpacing": true, "textAlign": true,
	"textDecoration": true, "textTransform": true, "whiteSpace": true,
}

// IsStyleKey reports whether key is a known style property.
// CSS custom properties ("--brand-color") are always accepted.
func IsStyleKey(key string) bool {
	if strings.HasPrefix(key, "--") && len(key) > 2 {
		return true
	}
	return styleKeys[key]
}

// DefaultStyle returns the style an element of type t starts with.
func DefaultStyle(t ElementType) Record {
	switch t {
	case TypeContainer:
		return Record{"display": String("block")}
	case TypeText:
		return Record{"fontSize": Number(16)}
	case TypeButton:
		return Record{"padding": String("8px 16px"), "cursor": String("pointer")}
	case TypeImage:
		return Record{"width": Number(200), "height": Number(150)}
	case TypeInput:
		return Record{"width": Number(240)}
	case TypeMenu:
		return Record{"display": String("flex")}
	case TypeSlider:
		return Record{"width": String("100%"), "height": Number(320)}
	default:
		return Record{}
	}
}
