package utils

import (
	"fmt"
	"reflect"

	"familyhub/pkg/types"
)

var ColumnTag = "db"

// Column describes a db-tagged struct field.
type Column struct {
	Name     string
	Nullable bool
}

func structValue(input any) reflect.Value {
	targetValue := reflect.ValueOf(input)
	if targetValue.Kind() == reflect.Ptr {
		targetValue = targetValue.Elem()
	}

	if targetValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return targetValue
}

func columnName(field reflect.StructField) string {
	if field.PkgPath != "" {
		return ""
	}

	tagValue := field.Tag.Get(ColumnTag)
	if tagValue == "-" {
		return ""
	}
	return tagValue
}

// StructColumns returns the db columns of a struct in declaration order.
// Pointer fields map to nullable columns.
func StructColumns(input any) []Column {
	targetValue := structValue(input)
	targetType := targetValue.Type()

	result := make([]Column, 0, targetValue.NumField())

	for i := 0; i < targetValue.NumField(); i++ {
		field := targetType.Field(i)

		name := columnName(field)
		if name == "" {
			continue
		}

		result = append(result, Column{
			Name:     name,
			Nullable: field.Type.Kind() == reflect.Ptr || field.Type.Kind() == reflect.Map,
		})
	}

	return result
}

func StructToMap(input any) map[string]any {

	result := make(map[string]any)

	itemValue := structValue(input)
	itemType := itemValue.Type()

	for i := 0; i < itemValue.NumField(); i++ {

		tagValue := columnName(itemType.Field(i))
		if tagValue == "" {
			continue
		}

		result[tagValue] = itemValue.Field(i).Interface()

	}

	return result

}

// ChangesFromPatch collects the db-tagged Optional fields of a patch struct that
// were set, in declaration order. Explicit nulls are kept with a nil value.
func ChangesFromPatch(patch any) types.Changes {
	patchValue := structValue(patch)
	patchType := patchValue.Type()

	changes := make(types.Changes, 0, patchValue.NumField())

	for i := 0; i < patchValue.NumField(); i++ {
		column := columnName(patchType.Field(i))
		if column == "" {
			continue
		}

		field, ok := patchValue.Field(i).Interface().(types.OptionalField)
		if !ok {
			panic(fmt.Sprintf("patch field %s must be an Optional", patchType.Field(i).Name))
		}

		if !field.IsSet() {
			continue
		}

		changes = append(changes, types.Change{Column: column, Value: field.SQLValue()})
	}

	return changes
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)

}
