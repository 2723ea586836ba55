package testutil

import (
	"github.com/leapstack-labs/querykit/pkg/ir"
	"github.com/leapstack-labs/querykit/pkg/schema"
)

// Posts is a blog post source with typed fields.
func Posts() *schema.Table {
	return &schema.Table{
		Name: "posts",
		PK:   "id",
		FieldTypes: map[string]ir.ParamType{
			"id":        ir.ScalarType{Name: ir.TypeInteger},
			"title":     ir.ScalarType{Name: ir.TypeString},
			"body":      ir.ScalarType{Name: ir.TypeString},
			"public":    ir.ScalarType{Name: ir.TypeBoolean},
			"author_id": ir.ScalarType{Name: ir.TypeInteger},
			"tags":      ir.ArrayType{Elem: ir.ScalarType{Name: ir.TypeString}},
			"visits":    ir.ScalarType{Name: ir.TypeInteger},
		},
	}
}

// Comments is a comment source referencing posts.
func Comments() *schema.Table {
	return &schema.Table{
		Name: "comments",
		PK:   "id",
		FieldTypes: map[string]ir.ParamType{
			"id":       ir.ScalarType{Name: ir.TypeInteger},
			"post_id":  ir.ScalarType{Name: ir.TypeInteger},
			"text":     ir.ScalarType{Name: ir.TypeString},
			"approved": ir.ScalarType{Name: ir.TypeBoolean},
		},
	}
}

// Authors is an author source with a namespace prefix.
func Authors() *schema.Table {
	return &schema.Table{
		Name:        "authors",
		TablePrefix: "accounts",
		PK:          "id",
		FieldTypes: map[string]ir.ParamType{
			"id":   ir.ScalarType{Name: ir.TypeInteger},
			"name": ir.ScalarType{Name: ir.TypeString},
		},
	}
}
