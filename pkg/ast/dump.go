package ast

import (
	"fmt"
	"reflect"
)

// Dump converts a tree into nested maps and slices suitable for JSON or
// YAML encoding. Each node map carries its type name under "node" and its
// byte range under "span"; zero-valued fields are omitted.
func Dump(n Node) map[string]any {
	if isNil(n) {
		return nil
	}
	v := reflect.ValueOf(n).Elem()
	span := n.GetSpan()
	out := map[string]any{
		"node": v.Type().Name(),
		"span": fmt.Sprintf("%d-%d", span.Start.Offset, span.End.Offset),
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		if field.Anonymous || !field.IsExported() {
			continue
		}
		if val, ok := dumpValue(v.Field(i)); ok {
			out[snake(field.Name)] = val
		}
	}
	return out
}

var (
	nodeType     = reflect.TypeOf((*Node)(nil)).Elem()
	stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

func dumpValue(v reflect.Value) (any, bool) {
	if v.IsZero() {
		return nil, false
	}
	if v.Type().Implements(nodeType) {
		node, _ := v.Interface().(Node)
		if isNil(node) {
			return nil, false
		}
		return Dump(node), true
	}
	if v.Type().Implements(stringerType) {
		return v.Interface().(fmt.Stringer).String(), true
	}
	switch v.Kind() {
	case reflect.Slice:
		items := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			if item, ok := dumpValue(v.Index(i)); ok {
				items = append(items, item)
			}
		}
		return items, true
	case reflect.Interface:
		return dumpValue(v.Elem())
	default:
		return v.Interface(), true
	}
}

// snake converts a Go field name to snake_case.
func snake(name string) string {
	b := make([]byte, 0, len(name)+4)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				b = append(b, '_')
			}
			c += 'a' - 'A'
		}
		b = append(b, c)
	}
	return string(b)
}
