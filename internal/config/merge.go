package config

// deepMerge merges src into dst in place: mappings merge recursively by
// key, everything else (including arrays/sequences) is replaced wholesale.
// It operates on the generic map[string]interface{} produced by
// yaml.Unmarshal, before any typed parsing happens.
func deepMerge(dst, src map[string]interface{}) {
	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = srcVal
			continue
		}
		dstMap, dstIsMap := asStringMap(dstVal)
		srcMap, srcIsMap := asStringMap(srcVal)
		if dstIsMap && srcIsMap {
			deepMerge(dstMap, srcMap)
			dst[key] = dstMap
			continue
		}
		dst[key] = srcVal
	}
}

// asStringMap normalizes the two shapes yaml.v3 produces for a mapping
// node (map[string]interface{} when unmarshaled into that concrete type,
// map[interface{}]interface{} when unmarshaled into a bare interface{}).
func asStringMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// deepCopyMap produces an independent copy of a raw YAML mapping so that
// merging an override onto it never mutates the shared base.
func deepCopyMap(src map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(src))
	for k, v := range src {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(val)
	case map[interface{}]interface{}:
		m, _ := asStringMap(val)
		return deepCopyMap(m)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return val
	}
}
