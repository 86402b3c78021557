// Package schema loads class definitions from CUE files and exposes the
// column metadata the collection layer resolves property names through.
//
// A schema directory contains one or more .cue files declaring classes
// under the top-level "class" struct:
//
//	class: {
//		Person: {
//			properties: {
//				name:    {type: "string"}
//				age:     {type: "int"}
//				balance: {type: "decimal", optional: true}
//			}
//		}
//		Score: {
//			primitive: true
//			type:      "int"
//		}
//	}
//
// A primitive class holds bare values of a single base type; its elements
// have no addressable properties and its result sets report an empty
// element type name. Record classes declare ordered properties; the
// declaration order fixes the engine column order.
//
// Base types: int, float, bool, string, timestamp, decimal.
package schema
