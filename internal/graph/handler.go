package graph

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"packtrail/internal/models"
)

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves POST /graphql. Identity, when present, arrives through the
// request context set by the authentication middleware; anonymous requests
// run too, and each field's access annotation decides what they may touch.
func Handler(schema graphql.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
		}
		if req.Query == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Missing query"))
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})
		return c.JSON(result)
	}
}
