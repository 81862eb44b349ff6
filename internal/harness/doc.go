// Package harness runs editing scenarios written in YAML against a real
// session.
//
// A scenario names a sequence of session operations and the assertions the
// final canvas must satisfy:
//
//	name: card_override
//	description: An override on a derived element wins over the master
//	library: ../library
//	steps:
//	  - op: create_instance
//	    as: card
//	    args: {component: Card, left: 40, top: 80}
//	  - op: set_override
//	    args: {id: $card, style: {backgroundColor: "#f00"}}
//	assertions:
//	  - type: resolved_style
//	    element: $card
//	    key: backgroundColor
//	    value: "#f00"
//
// Steps that produce an id (add_element, duplicate_element,
// create_instance, create_component, add_variant, add_prop, ...) bind it to
// the name given in "as"; later steps and assertions refer to it as
// "$name". A step may declare the error code it must fail with.
//
// Ids are deterministic, so the resolved document a scenario ends with can
// be compared against a golden file with RunWithGolden.
package harness
