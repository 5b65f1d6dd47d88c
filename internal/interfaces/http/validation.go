package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/domain"
)

var validate = validator.New()

func init() {
	// decimal.Decimal se valida como número (gt=0, gte, lte).
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// Los errores nombran el campo como en el JSON.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// bindBody decodifica el JSON del cuerpo y aplica las reglas validate.
func bindBody(c *fiber.Ctx, in interface{}) error {
	if err := c.BodyParser(in); err != nil {
		return fmt.Errorf("%w: cuerpo JSON inválido", domain.ErrInvalidInput)
	}
	return validateStruct(in)
}

// bindQuery decodifica el query string; la paginación ausente o fuera de rango se normaliza antes de validar.
func bindQuery(c *fiber.Ctx, in interface{ DefaultPage() }) error {
	if err := c.QueryParser(in); err != nil {
		return fmt.Errorf("%w: parámetros de consulta inválidos", domain.ErrInvalidInput)
	}
	in.DefaultPage()
	return validateStruct(in)
}

func validateStruct(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldPath(fe)+" ("+fe.Tag()+")")
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
}

// fieldPath quita el nombre del struct raíz: "CreateOrderRequest.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// pathID lee :id y exige formato uuid.
func pathID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if err := uuid.Validate(id); err != nil {
		return "", fmt.Errorf("%w: id inválido", domain.ErrInvalidInput)
	}
	return id, nil
}
