package earthengine

import "encoding/json"

// Expression is a serialized Earth Engine computation graph.
// Result names the entry of Values that holds the root node.
type Expression struct {
	Result string               `json:"result"`
	Values map[string]ValueNode `json:"values"`
}

// ValueNode is one node of the computation graph. Exactly one field is set.
type ValueNode struct {
	ConstantValue           json.RawMessage     `json:"constantValue,omitempty"`
	FunctionInvocationValue *FunctionInvocation `json:"functionInvocationValue,omitempty"`
	ArrayValue              *ArrayValue         `json:"arrayValue,omitempty"`
	ValueReference          string              `json:"valueReference,omitempty"`
}

// FunctionInvocation calls a named Earth Engine algorithm
type FunctionInvocation struct {
	FunctionName string               `json:"functionName"`
	Arguments    map[string]ValueNode `json:"arguments"`
}

// ArrayValue is a list of nodes
type ArrayValue struct {
	Values []ValueNode `json:"values"`
}

// NewExpression wraps root into a single-node graph
func NewExpression(root ValueNode) Expression {
	return Expression{
		Result: "0",
		Values: map[string]ValueNode{"0": root},
	}
}

// Constant returns a constant node. v must be a JSON scalar, list or map of scalars.
func Constant(v interface{}) ValueNode {
	raw, err := json.Marshal(v)
	if err != nil {
		// unreachable for the value kinds above
		raw = json.RawMessage("null")
	}
	return ValueNode{ConstantValue: raw}
}

// Invoke returns a function invocation node
func Invoke(functionName string, args map[string]ValueNode) ValueNode {
	if args == nil {
		args = map[string]ValueNode{}
	}
	return ValueNode{FunctionInvocationValue: &FunctionInvocation{
		FunctionName: functionName,
		Arguments:    args,
	}}
}

// Array returns an array node
func Array(values ...ValueNode) ValueNode {
	return ValueNode{ArrayValue: &ArrayValue{Values: values}}
}
