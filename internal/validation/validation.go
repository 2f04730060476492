package validation

import "regexp"

// Фиксированные тексты нарушений — часть внешнего контракта API.
const (
	MsgRequired     = "Missing data for required field."
	MsgInvalidEmail = "Please enter a valid email address"
	MsgInvalidPrice = "Price must be greater than $0.00"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Errors накапливает нарушения по полям: имя поля -> список сообщений.
// Реализует error, чтобы подниматься через сервисный слой без потери структуры.
type Errors map[string][]string

func (e Errors) Error() string { return "validation failed" }

func (e Errors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// orNil возвращает nil при отсутствии нарушений: нельзя возвращать
// непустой интерфейс с пустой картой внутри
func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// UserInput кандидатный набор полей пользователя. nil — поле не передано.
type UserInput struct {
	Name    *string
	Email   *string
	Address *string
	Phone   *string
}

// User валидирует поля пользователя. При partial пропущенные поля не
// считаются нарушением (семантика частичного обновления).
func User(in UserInput, partial bool) error {
	errs := Errors{}

	if in.Name == nil {
		if !partial {
			errs.add("name", MsgRequired)
		}
	} else if l := len(*in.Name); l < 2 || l > 100 {
		errs.add("name", "Length must be between 2 and 100.")
	}

	if in.Email == nil {
		if !partial {
			errs.add("email", MsgRequired)
		}
	} else if !emailRe.MatchString(*in.Email) || len(*in.Email) > 100 {
		errs.add("email", MsgInvalidEmail)
	}

	if in.Address != nil && len(*in.Address) > 255 {
		errs.add("address", "Longer than maximum length 255.")
	}
	if in.Phone != nil && len(*in.Phone) > 20 {
		errs.add("phone", "Longer than maximum length 20.")
	}

	return errs.orNil()
}

// ProductInput кандидатный набор полей товара. nil — поле не передано.
type ProductInput struct {
	ProductName   *string
	Price         *float64
	Description   *string
	StockQuantity *int64
	Category      *string
}

// Product валидирует поля товара
func Product(in ProductInput, partial bool) error {
	errs := Errors{}

	if in.ProductName == nil {
		if !partial {
			errs.add("product_name", MsgRequired)
		}
	} else if l := len(*in.ProductName); l < 1 || l > 100 {
		errs.add("product_name", "Length must be between 1 and 100.")
	}

	if in.Price == nil {
		if !partial {
			errs.add("price", MsgRequired)
		}
	} else if *in.Price <= 0 {
		errs.add("price", MsgInvalidPrice)
	}

	if in.Description != nil && len(*in.Description) > 500 {
		errs.add("description", "Longer than maximum length 500.")
	}
	if in.StockQuantity != nil && *in.StockQuantity < 0 {
		errs.add("stock_quantity", "Must be greater than or equal to 0.")
	}
	if in.Category != nil && len(*in.Category) > 50 {
		errs.add("category", "Longer than maximum length 50.")
	}

	return errs.orNil()
}

// Field единичное нарушение произвольного поля (например, user_id в заказе)
func Field(field, msg string) error {
	return Errors{field: []string{msg}}
}
