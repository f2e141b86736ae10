package graph

import (
	"github.com/graphql-go/graphql"
)

// Object types. Field names follow the models' json tags so the default
// resolver reads them straight off the structs.

var itemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Item",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"trip_id":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"bag_id":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"category_id": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"qty":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"weight":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"weight_unit": &graphql.Field{Type: graphql.String},
		"priority":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"worn":        &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"link":        &graphql.Field{Type: graphql.String},
		"image_url":   &graphql.Field{Type: graphql.String},
		"position":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":                &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"bag_id":            &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":              &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"position":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"color":             &graphql.Field{Type: graphql.String},
		"total_weight":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"total_worn_weight": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"items":             &graphql.Field{Type: graphql.NewList(itemType)},
	},
})

var bagType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Bag",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"trip_id":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"user_id":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description":  &graphql.Field{Type: graphql.String},
		"goal":         &graphql.Field{Type: graphql.String},
		"passed":       &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"likes":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"explore_bags": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"image_url":    &graphql.Field{Type: graphql.String},
		"created_at":   &graphql.Field{Type: graphql.DateTime},
		"categories":   &graphql.Field{Type: graphql.NewList(categoryType)},
	},
})

var tripType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Trip",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"user_id":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"about":      &graphql.Field{Type: graphql.String},
		"distance":   &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"start_date": &graphql.Field{Type: graphql.DateTime},
		"end_date":   &graphql.Field{Type: graphql.DateTime},
		"image_url":  &graphql.Field{Type: graphql.String},
		"created_at": &graphql.Field{Type: graphql.DateTime},
		"bags":       &graphql.Field{Type: graphql.NewList(bagType)},
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"username":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"weight_unit":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"distance_unit": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"is_admin":      &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"verified":      &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"created_at":    &graphql.Field{Type: graphql.DateTime},
	},
})

// profileType is the public face of an account: no email, no flags.
var profileType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Profile",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var exploreBagType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ExploreBag",
	Fields: graphql.Fields{
		"bag":   &graphql.Field{Type: graphql.NewNonNull(bagType)},
		"owner": &graphql.Field{Type: graphql.NewNonNull(profileType)},
	},
})

var authPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthPayload",
	Fields: graphql.Fields{
		"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"user":  &graphql.Field{Type: graphql.NewNonNull(userType)},
	},
})

var articleType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Article",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"title":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"body":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"image_url":  &graphql.Field{Type: graphql.String},
		"created_at": &graphql.Field{Type: graphql.DateTime},
	},
})

var changelogType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Changelog",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"title":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"body":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"created_at": &graphql.Field{Type: graphql.DateTime},
	},
})

var bugReportType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BugReport",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"created_at":  &graphql.Field{Type: graphql.DateTime},
	},
})
