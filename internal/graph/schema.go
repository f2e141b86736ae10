package graph

import (
	"time"

	"packtrail/internal/service"

	"github.com/graphql-go/graphql"
	"github.com/redis/go-redis/v9"
)

// Resolver holds the services the schema resolves through.
type Resolver struct {
	Auth       *service.AuthService
	Trips      *service.TripService
	Bags       *service.BagService
	Categories *service.CategoryService
	Items      *service.ItemService
	Cascades   *service.CascadeService
	Content    *service.ContentService

	// RDB backs the per-field rate limits on abuse-prone mutations.
	RDB *redis.Client
}

// NewSchema builds the executable schema.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    r.queryType(),
		Mutation: r.mutationType(),
	})
}

func idArg() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
	}
}

func uintArg(p graphql.ResolveParams, name string) uint {
	if v, ok := p.Args[name].(int); ok && v > 0 {
		return uint(v)
	}
	return 0
}

func stringArg(p graphql.ResolveParams, name string) string {
	v, _ := p.Args[name].(string)
	return v
}

func boolArg(p graphql.ResolveParams, name string) bool {
	v, _ := p.Args[name].(bool)
	return v
}

func intArg(p graphql.ResolveParams, name string) int {
	v, _ := p.Args[name].(int)
	return v
}

func floatArg(p graphql.ResolveParams, name string) float64 {
	switch v := p.Args[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func timeArg(p graphql.ResolveParams, name string) *time.Time {
	if v, ok := p.Args[name].(time.Time); ok {
		return &v
	}
	return nil
}

func idListArg(p graphql.ResolveParams, name string) []uint {
	raw, ok := p.Args[name].([]interface{})
	if !ok {
		return nil
	}
	ids := make([]uint, 0, len(raw))
	for _, v := range raw {
		if n, ok := v.(int); ok && n > 0 {
			ids = append(ids, uint(n))
		}
	}
	return ids
}

func (r *Resolver) queryType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": {
				Type: userType,
				Resolve: r.guard("me", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.GetUser(p.Context, mustViewer(p.Context))
				}),
			},
			"emailExists": {
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.guard("emailExists", public, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.EmailExists(p.Context, stringArg(p, "email"))
				}),
			},
			"trips": {
				Type: graphql.NewList(tripType),
				Resolve: r.guard("trips", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Trips.ListTrips(p.Context, mustViewer(p.Context))
				}),
			},
			"trip": {
				Type: tripType,
				Args: idArg(),
				Resolve: r.guard("trip", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Trips.GetTrip(p.Context, mustViewer(p.Context), uintArg(p, "id"))
				}),
			},
			"bags": {
				Type: graphql.NewList(bagType),
				Args: graphql.FieldConfigArgument{
					"trip_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.guard("bags", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Bags.ListBags(p.Context, mustViewer(p.Context), uintArg(p, "trip_id"))
				}),
			},
			"bag": {
				Type: bagType,
				Args: idArg(),
				Resolve: r.guard("bag", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Bags.GetBag(p.Context, mustViewer(p.Context), uintArg(p, "id"))
				}),
			},
			"categories": {
				Type: graphql.NewList(categoryType),
				Args: graphql.FieldConfigArgument{
					"bag_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.guard("categories", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Categories.ListCategories(p.Context, mustViewer(p.Context), uintArg(p, "bag_id"))
				}),
			},
			"items": {
				Type: graphql.NewList(itemType),
				Args: graphql.FieldConfigArgument{
					"category_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.guard("items", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Items.ListItems(p.Context, mustViewer(p.Context), uintArg(p, "category_id"))
				}),
			},
			"sharedBag": {
				Type: bagType,
				Args: idArg(),
				Resolve: r.guard("sharedBag", public, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Bags.SharedBag(p.Context, uintArg(p, "id"))
				}),
			},
			"userShared": {
				Type: graphql.NewList(bagType),
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.guard("userShared", public, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Bags.UserShared(p.Context, stringArg(p, "username"))
				}),
			},
			"exploreBags": {
				Type: graphql.NewList(exploreBagType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.guard("exploreBags", public, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Bags.Explore(p.Context, intArg(p, "limit"))
				}),
			},
			"articles": {
				Type: graphql.NewList(articleType),
				Resolve: r.guard("articles", public, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Content.ListArticles(p.Context)
				}),
			},
			"changelogs": {
				Type: graphql.NewList(changelogType),
				Resolve: r.guard("changelogs", public, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Content.ListChangelogs(p.Context)
				}),
			},
		},
	})
}

func (r *Resolver) mutationType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": {
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.guard("register", public, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.Register(p.Context, service.RegisterInput{
						Username: stringArg(p, "username"),
						Email:    stringArg(p, "email"),
						Password: stringArg(p, "password"),
					})
				}),
			},
			"login": {
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.guard("login", public, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.Login(p.Context, stringArg(p, "email"), stringArg(p, "password"))
				}),
			},
			"verifyEmail": {
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"token": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.guard("verifyEmail", public, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.VerifyEmail(p.Context, stringArg(p, "token"))
				}),
			},
			"requestPasswordReset": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.guard("requestPasswordReset", public, func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Auth.RequestPasswordReset(p.Context, stringArg(p, "email")); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},
			"resetPassword": {
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"token":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.guard("resetPassword", public, func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Auth.ResetPassword(p.Context, stringArg(p, "token"), stringArg(p, "password")); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},
			"updateUser": {
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"username":      &graphql.ArgumentConfig{Type: graphql.String},
					"email":         &graphql.ArgumentConfig{Type: graphql.String},
					"weight_unit":   &graphql.ArgumentConfig{Type: graphql.String},
					"distance_unit": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.guard("updateUser", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.UpdateUser(p.Context, mustViewer(p.Context), service.UpdateUserInput{
						Username:     stringArg(p, "username"),
						Email:        stringArg(p, "email"),
						WeightUnit:   stringArg(p, "weight_unit"),
						DistanceUnit: stringArg(p, "distance_unit"),
					})
				}),
			},

			"addTrip": {
				Type: tripType,
				Args: tripArgs(false),
				Resolve: r.guard("addTrip", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Trips.AddTrip(p.Context, mustViewer(p.Context), tripInput(p))
				}),
			},
			"updateTrip": {
				Type: tripType,
				Args: tripArgs(true),
				Resolve: r.guard("updateTrip", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Trips.UpdateTrip(p.Context, mustViewer(p.Context), uintArg(p, "id"), tripInput(p))
				}),
			},
			"deleteTrip": {
				Type: graphql.Boolean,
				Args: idArg(),
				Resolve: r.guard("deleteTrip", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Cascades.DeleteTrip(p.Context, mustViewer(p.Context), uintArg(p, "id")); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},
			"duplicateTrip": {
				Type: tripType,
				Args: idArg(),
				Resolve: r.guard("duplicateTrip", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Cascades.DuplicateTrip(p.Context, mustViewer(p.Context), uintArg(p, "id"))
				}),
			},

			"addBag": {
				Type: bagType,
				Args: bagArgs(false),
				Resolve: r.guard("addBag", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Bags.AddBag(p.Context, mustViewer(p.Context), bagInput(p))
				}),
			},
			"updateBag": {
				Type: bagType,
				Args: bagArgs(true),
				Resolve: r.guard("updateBag", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Bags.UpdateBag(p.Context, mustViewer(p.Context), uintArg(p, "id"), bagInput(p))
				}),
			},
			"deleteBag": {
				Type: graphql.Boolean,
				Args: idArg(),
				Resolve: r.guard("deleteBag", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Cascades.DeleteBag(p.Context, mustViewer(p.Context), uintArg(p, "id")); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},
			"duplicateBag": {
				Type: bagType,
				Args: idArg(),
				Resolve: r.guard("duplicateBag", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Cascades.DuplicateBag(p.Context, mustViewer(p.Context), uintArg(p, "id"))
				}),
			},
			"likeBag": {
				Type: bagType,
				Args: idArg(),
				Resolve: r.guard("likeBag", public, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Bags.LikeBag(p.Context, uintArg(p, "id"))
				}),
			},

			"addCategory": {
				Type: categoryType,
				Args: graphql.FieldConfigArgument{
					"bag_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"name":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"color":  &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.guard("addCategory", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Categories.AddCategory(p.Context, mustViewer(p.Context), service.CategoryInput{
						BagID: uintArg(p, "bag_id"),
						Name:  stringArg(p, "name"),
						Color: stringArg(p, "color"),
					})
				}),
			},
			"updateCategory": {
				Type: categoryType,
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"color": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.guard("updateCategory", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Categories.UpdateCategory(p.Context, mustViewer(p.Context), uintArg(p, "id"), stringArg(p, "name"), stringArg(p, "color"))
				}),
			},
			"deleteCategory": {
				Type: graphql.Boolean,
				Args: idArg(),
				Resolve: r.guard("deleteCategory", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Cascades.DeleteCategory(p.Context, mustViewer(p.Context), uintArg(p, "id")); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},
			"reorderCategories": {
				Type: graphql.NewList(categoryType),
				Args: graphql.FieldConfigArgument{
					"bag_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"ids":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.Int)))},
				},
				Resolve: r.guard("reorderCategories", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Categories.ReorderCategories(p.Context, mustViewer(p.Context), uintArg(p, "bag_id"), idListArg(p, "ids"))
				}),
			},

			"addItem": {
				Type: itemType,
				Args: itemArgs(false),
				Resolve: r.guard("addItem", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Items.AddItem(p.Context, mustViewer(p.Context), itemInput(p))
				}),
			},
			"updateItem": {
				Type: itemType,
				Args: itemArgs(true),
				Resolve: r.guard("updateItem", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Items.UpdateItem(p.Context, mustViewer(p.Context), uintArg(p, "id"), itemInput(p))
				}),
			},
			"deleteItem": {
				Type: graphql.Boolean,
				Args: idArg(),
				Resolve: r.guard("deleteItem", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Cascades.DeleteItem(p.Context, mustViewer(p.Context), uintArg(p, "id")); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},
			"reorderItems": {
				Type: graphql.NewList(itemType),
				Args: graphql.FieldConfigArgument{
					"category_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"ids":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.Int)))},
				},
				Resolve: r.guard("reorderItems", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Items.ReorderItems(p.Context, mustViewer(p.Context), uintArg(p, "category_id"), idListArg(p, "ids"))
				}),
			},

			"addBugReport": {
				Type: bugReportType,
				Args: graphql.FieldConfigArgument{
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.guard("addBugReport", authenticated, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Content.AddBugReport(p.Context, mustViewer(p.Context), stringArg(p, "title"), stringArg(p, "description"))
				}),
			},
			"addArticle": {
				Type: articleType,
				Args: graphql.FieldConfigArgument{
					"title":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"body":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"image_url": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.guard("addArticle", admin, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Content.AddArticle(p.Context, mustViewer(p.Context), stringArg(p, "title"), stringArg(p, "body"), stringArg(p, "image_url"))
				}),
			},
			"addChangelog": {
				Type: changelogType,
				Args: graphql.FieldConfigArgument{
					"title": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"body":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.guard("addChangelog", admin, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Content.AddChangelog(p.Context, mustViewer(p.Context), stringArg(p, "title"), stringArg(p, "body"))
				}),
			},
		},
	})
}

func tripArgs(withID bool) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"name":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"about":      &graphql.ArgumentConfig{Type: graphql.String},
		"distance":   &graphql.ArgumentConfig{Type: graphql.Float},
		"start_date": &graphql.ArgumentConfig{Type: graphql.DateTime},
		"end_date":   &graphql.ArgumentConfig{Type: graphql.DateTime},
		"image_url":  &graphql.ArgumentConfig{Type: graphql.String},
	}
	if withID {
		args["id"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
	}
	return args
}

func tripInput(p graphql.ResolveParams) service.TripInput {
	return service.TripInput{
		Name:      stringArg(p, "name"),
		About:     stringArg(p, "about"),
		Distance:  floatArg(p, "distance"),
		StartDate: timeArg(p, "start_date"),
		EndDate:   timeArg(p, "end_date"),
		ImageURL:  stringArg(p, "image_url"),
	}
}

func bagArgs(withID bool) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"name":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"description":  &graphql.ArgumentConfig{Type: graphql.String},
		"goal":         &graphql.ArgumentConfig{Type: graphql.String},
		"passed":       &graphql.ArgumentConfig{Type: graphql.Boolean},
		"explore_bags": &graphql.ArgumentConfig{Type: graphql.Boolean},
		"image_url":    &graphql.ArgumentConfig{Type: graphql.String},
	}
	if withID {
		args["id"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
	} else {
		args["trip_id"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
	}
	return args
}

func bagInput(p graphql.ResolveParams) service.BagInput {
	return service.BagInput{
		TripID:      uintArg(p, "trip_id"),
		Name:        stringArg(p, "name"),
		Description: stringArg(p, "description"),
		Goal:        stringArg(p, "goal"),
		Passed:      boolArg(p, "passed"),
		ExploreBags: boolArg(p, "explore_bags"),
		ImageURL:    stringArg(p, "image_url"),
	}
}

func itemArgs(withID bool) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"name":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.ArgumentConfig{Type: graphql.String},
		"qty":         &graphql.ArgumentConfig{Type: graphql.Int},
		"weight":      &graphql.ArgumentConfig{Type: graphql.Float},
		"weight_unit": &graphql.ArgumentConfig{Type: graphql.String},
		"priority":    &graphql.ArgumentConfig{Type: graphql.String},
		"worn":        &graphql.ArgumentConfig{Type: graphql.Boolean},
		"link":        &graphql.ArgumentConfig{Type: graphql.String},
		"image_url":   &graphql.ArgumentConfig{Type: graphql.String},
	}
	if withID {
		args["id"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
	} else {
		args["category_id"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
	}
	return args
}

func itemInput(p graphql.ResolveParams) service.ItemInput {
	return service.ItemInput{
		CategoryID:  uintArg(p, "category_id"),
		Name:        stringArg(p, "name"),
		Description: stringArg(p, "description"),
		Qty:         intArg(p, "qty"),
		Weight:      floatArg(p, "weight"),
		WeightUnit:  stringArg(p, "weight_unit"),
		Priority:    stringArg(p, "priority"),
		Worn:        boolArg(p, "worn"),
		Link:        stringArg(p, "link"),
		ImageURL:    stringArg(p, "image_url"),
	}
}
