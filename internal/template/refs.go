package template

import (
	"regexp"
	"sort"
	"strings"
)

// References lists the logical names a template value points at.
type References struct {
	Refs       []string // Ref targets
	GetAtts    []string // Fn::GetAtt resource names
	Conditions []string // Fn::If and Condition names
	SubVars    []string // ${Var} names inside Fn::Sub strings, without attributes
}

var subVarPattern = regexp.MustCompile(`\$\{([^}!][^}]*)\}`)

// CollectReferences walks a JSON-native value and returns every name it references.
// Each list is sorted and de-duplicated.
func CollectReferences(v any) References {
	seen := map[string]map[string]bool{
		"ref": {}, "getatt": {}, "cond": {}, "sub": {},
	}
	walkReferences(v, seen)
	return References{
		Refs:       sortedKeys(seen["ref"]),
		GetAtts:    sortedKeys(seen["getatt"]),
		Conditions: sortedKeys(seen["cond"]),
		SubVars:    sortedKeys(seen["sub"]),
	}
}

func walkReferences(v any, seen map[string]map[string]bool) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 1 {
			for key, arg := range val {
				switch key {
				case "Ref":
					if name, ok := arg.(string); ok {
						seen["ref"][name] = true
						return
					}
				case "Fn::GetAtt":
					if name := getAttResource(arg); name != "" {
						seen["getatt"][name] = true
						return
					}
				case "Condition":
					if name, ok := arg.(string); ok {
						seen["cond"][name] = true
						return
					}
				case "Fn::If":
					if args, ok := arg.([]any); ok && len(args) == 3 {
						if name, ok := args[0].(string); ok {
							seen["cond"][name] = true
						}
						walkReferences(args[1], seen)
						walkReferences(args[2], seen)
						return
					}
				case "Fn::Sub":
					walkSub(arg, seen)
					return
				}
			}
		}
		for _, item := range val {
			walkReferences(item, seen)
		}
	case []any:
		for _, item := range val {
			walkReferences(item, seen)
		}
	}
}

// walkSub records the variables of a Fn::Sub body. Names bound by the
// variable map are not references.
func walkSub(arg any, seen map[string]map[string]bool) {
	var body string
	bound := map[string]bool{}
	switch a := arg.(type) {
	case string:
		body = a
	case []any:
		if len(a) > 0 {
			body, _ = a[0].(string)
		}
		if len(a) > 1 {
			if vars, ok := a[1].(map[string]any); ok {
				for name, value := range vars {
					bound[name] = true
					walkReferences(value, seen)
				}
			}
		}
	}
	for _, m := range subVarPattern.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if bound[name] {
			continue
		}
		// ${Resource.Attribute} is the GetAtt form.
		if i := strings.Index(name, "."); i > 0 && !strings.HasPrefix(name, "AWS::") {
			seen["getatt"][name[:i]] = true
			continue
		}
		seen["sub"][name] = true
	}
}

func getAttResource(arg any) string {
	switch a := arg.(type) {
	case []any:
		if len(a) == 2 {
			name, _ := a[0].(string)
			return name
		}
	case string:
		if i := strings.Index(a, "."); i > 0 {
			return a[:i]
		}
	}
	return ""
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
