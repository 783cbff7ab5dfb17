package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Op - оператор сравнения в фильтре
// Только перечисленные операторы транслируются в запрос к хранилищу,
// всё остальное отклоняется на этапе разбора
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// reservedParams - служебные параметры запроса, не являющиеся фильтрами
var reservedParams = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
	"query":  true,
}

// mongoOps - трансляция оператора в синтаксис MongoDB
var mongoOps = map[Op]string{
	OpGt:  "$gt",
	OpGte: "$gte",
	OpLt:  "$lt",
	OpLte: "$lte",
	OpIn:  "$in",
}

// fieldNames - соответствие имён полей API именам полей в хранилище
var fieldNames = map[string]string{
	"publicationYear": "publication_year",
	"averageRating":   "average_rating",
	"createdAt":       "created_at",
	"userId":          "user_id",
}

// Condition - одно ограничение фильтра: поле, оператор, значение
type Condition struct {
	Field string
	Op    Op
	Value interface{}
}

// Filter - упорядоченный набор ограничений, построенный из параметров запроса
type Filter struct {
	Conditions []Condition
}

// ParseFilter разбирает параметры запроса вида field=value и field[op]=value
// в структурированный фильтр. Операторы вне списка gt/gte/lt/lte/in
// отклоняются с ошибкой - произвольный синтаксис хранилища не пропускается
func ParseFilter(values url.Values) (Filter, error) {
	var filter Filter

	for key, vals := range values {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}

		field, op, err := parseKey(key)
		if err != nil {
			return Filter{}, err
		}

		if err := checkFieldName(field); err != nil {
			return Filter{}, err
		}

		if op == OpIn {
			// Для in собираем все значения: и повторы параметра, и списки через запятую
			var members []interface{}
			for _, v := range vals {
				for _, part := range strings.Split(v, ",") {
					members = append(members, coerceLiteral(strings.TrimSpace(part)))
				}
			}
			filter.Conditions = append(filter.Conditions, Condition{Field: field, Op: op, Value: members})
			continue
		}

		filter.Conditions = append(filter.Conditions, Condition{Field: field, Op: op, Value: coerceLiteral(vals[0])})
	}

	return filter, nil
}

// parseKey выделяет имя поля и оператор из ключа параметра
// "publicationYear[gt]" -> ("publicationYear", OpGt), "genre" -> ("genre", OpEq)
func parseKey(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}

	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", fmt.Errorf("malformed filter parameter %q", key)
	}

	field := key[:open]
	token := key[open+1 : len(key)-1]

	op := Op(token)
	if _, ok := mongoOps[op]; !ok {
		return "", "", fmt.Errorf("unsupported filter operator %q", token)
	}

	return field, op, nil
}

// checkFieldName отклоняет имена полей со спецсимволами синтаксиса хранилища
func checkFieldName(field string) error {
	if strings.ContainsAny(field, "$.") {
		return fmt.Errorf("invalid filter field %q", field)
	}
	return nil
}

// coerceLiteral приводит строковое значение параметра к типу хранимого поля
// Порядок: целое, дробное, булево, строка
func coerceLiteral(s string) interface{} {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// BSON переводит фильтр в документ запроса MongoDB
// Несколько операторов по одному полю объединяются: year[gte]=1990&year[lte]=2000
func (f Filter) BSON() bson.M {
	out := bson.M{}

	for _, cond := range f.Conditions {
		field := storageField(cond.Field)

		if cond.Op == OpEq {
			out[field] = cond.Value
			continue
		}

		ops, ok := out[field].(bson.M)
		if !ok {
			ops = bson.M{}
			out[field] = ops
		}
		ops[mongoOps[cond.Op]] = cond.Value
	}

	return out
}

// IsEmpty сообщает, есть ли в фильтре хоть одно ограничение
func (f Filter) IsEmpty() bool {
	return len(f.Conditions) == 0
}

// ParseSort разбирает параметр sort в порядок сортировки MongoDB
// Поля разделены запятыми, префикс "-" означает убывание
// По умолчанию - новые записи первыми
func ParseSort(sortParam string) bson.D {
	if strings.TrimSpace(sortParam) == "" {
		return bson.D{{Key: "created_at", Value: -1}}
	}

	var sort bson.D
	for _, field := range strings.Split(sortParam, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		dir := 1
		if strings.HasPrefix(field, "-") {
			dir = -1
			field = field[1:]
		}
		if field == "" {
			continue
		}

		sort = append(sort, bson.E{Key: storageField(field), Value: dir})
	}

	if len(sort) == 0 {
		return bson.D{{Key: "created_at", Value: -1}}
	}

	return sort
}

// ParseSelect разбирает параметр select в проекцию полей
// Пустой параметр означает полные документы (nil проекция)
func ParseSelect(selectParam string) bson.D {
	if strings.TrimSpace(selectParam) == "" {
		return nil
	}

	var projection bson.D
	for _, field := range strings.Split(selectParam, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		projection = append(projection, bson.E{Key: storageField(field), Value: 1})
	}

	return projection
}

func storageField(apiName string) string {
	if stored, ok := fieldNames[apiName]; ok {
		return stored
	}
	return apiName
}
