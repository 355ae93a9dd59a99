package engine

// Context вложенная структура полей, через которую движок обменивается данными.
// Значения: числа, строки, bool, []byte, срезы и вложенные Context.
type Context map[string]any

// Lookup возвращает значение по пути ключей
func (c Context) Lookup(path ...string) (any, bool) {
	var cur any = c
	for _, key := range path {
		m, ok := asContext(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Sub возвращает вложенный контекст
func (c Context) Sub(path ...string) (Context, bool) {
	v, ok := c.Lookup(path...)
	if !ok {
		return nil, false
	}
	return asContext(v)
}

// Float читает числовой лист
func (c Context) Float(path ...string) (float64, bool) {
	v, ok := c.Lookup(path...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Bool читает логический лист
func (c Context) Bool(path ...string) (bool, bool) {
	v, ok := c.Lookup(path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Floats читает числовой массив
func (c Context) Floats(path ...string) ([]float64, bool) {
	v, ok := c.Lookup(path...)
	if !ok {
		return nil, false
	}
	switch arr := v.(type) {
	case []float64:
		return arr, true
	case []int:
		out := make([]float64, len(arr))
		for i, n := range arr {
			out[i] = float64(n)
		}
		return out, true
	default:
		return nil, false
	}
}

// Objects возвращает список объектов (лиц) контекста
func (c Context) Objects() []Context {
	objs, _ := c["objects"].([]Context)
	return objs
}

// PushObject добавляет объект в конец списка
func (c Context) PushObject(obj Context) {
	c["objects"] = append(c.Objects(), obj)
}

func asContext(v any) (Context, bool) {
	switch m := v.(type) {
	case Context:
		return m, true
	case map[string]any:
		return Context(m), true
	default:
		return nil, false
	}
}
