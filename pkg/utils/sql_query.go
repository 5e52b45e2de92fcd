package utils

import (
	"fmt"
	"reflect"
	"strings"
)

// GenerateInsertQuery builds an INSERT statement for a model from its
// db tags. The id column and fields tagged db:"-" are left out.
func GenerateInsertQuery(tableName string, model interface{}) string {
	modelType := reflect.TypeOf(model)
	var columns, placeholders string

	for i := 0; i < modelType.NumField(); i++ {
		dbTag := strings.TrimSuffix(modelType.Field(i).Tag.Get("db"), ",omitempty")
		if dbTag == "" || dbTag == "-" || dbTag == "id" {
			continue
		}
		if columns != "" {
			columns += ", "
			placeholders += ", "
		}
		columns += dbTag
		placeholders += "?"
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tableName, columns, placeholders)
}

// GetStructValues returns the model's field values in the column order
// GenerateInsertQuery produces.
func GetStructValues(model interface{}) []interface{} {
	modelValue := reflect.ValueOf(model)
	modelType := modelValue.Type()
	values := []interface{}{}

	for i := 0; i < modelType.NumField(); i++ {
		dbTag := strings.TrimSuffix(modelType.Field(i).Tag.Get("db"), ",omitempty")
		if dbTag == "" || dbTag == "-" || dbTag == "id" {
			continue
		}
		values = append(values, modelValue.Field(i).Interface())
	}

	return values
}
