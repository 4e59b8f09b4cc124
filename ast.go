package http1

import (
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"

	"github.com/flowmesh/http1/headparser"
)

// zeroPos is used for every synthesized node: this bridge has no source
// positions of its own to attribute, the same way the teacher's convert.go
// stamps every literal with a shared zeroPos.
var zeroPos = ast.Position{}

// RequestToNode converts a request head and its body to an AST ObjectNode,
// the same property shape as shape-http's RequestToNode (pkg/http/
// convert.go), generalized to this module's headparser.RequestHead.
func RequestToNode(head headparser.RequestHead, body []byte) ast.SchemaNode {
	props := map[string]ast.SchemaNode{
		"type":    ast.NewLiteralNode("request", zeroPos),
		"method":  ast.NewLiteralNode(head.Method, zeroPos),
		"path":    ast.NewLiteralNode(head.URI, zeroPos),
		"version": ast.NewLiteralNode(head.Version, zeroPos),
		"headers": headersToNode(head.Headers),
	}
	if body != nil {
		props["body"] = ast.NewLiteralNode(string(body), zeroPos)
	}
	return ast.NewObjectNode(props, zeroPos)
}

// ResponseToNode converts a response head and its body to an AST
// ObjectNode, mirroring shape-http's ResponseToNode.
func ResponseToNode(head headparser.ResponseHead, body []byte) ast.SchemaNode {
	props := map[string]ast.SchemaNode{
		"type":       ast.NewLiteralNode("response", zeroPos),
		"version":    ast.NewLiteralNode(head.Version, zeroPos),
		"statusCode": ast.NewLiteralNode(int64(head.StatusCode), zeroPos),
		"reason":     ast.NewLiteralNode(head.Reason, zeroPos),
		"headers":    headersToNode(head.Headers),
	}
	if body != nil {
		props["body"] = ast.NewLiteralNode(string(body), zeroPos)
	}
	return ast.NewObjectNode(props, zeroPos)
}

func headersToNode(h headparser.Headers) ast.SchemaNode {
	entries := h.All()
	elements := make([]ast.SchemaNode, len(entries))
	for i, e := range entries {
		elements[i] = ast.NewObjectNode(map[string]ast.SchemaNode{
			"key":   ast.NewLiteralNode(e.Name, zeroPos),
			"value": ast.NewLiteralNode(e.Value, zeroPos),
		}, zeroPos)
	}
	return ast.NewArrayDataNode(elements, zeroPos)
}

// NodeToRequest converts an AST ObjectNode built by RequestToNode (or
// matching its shape) back into a request head plus body.
func NodeToRequest(node ast.SchemaNode) (headparser.RequestHead, []byte, error) {
	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		return headparser.RequestHead{}, nil, fmt.Errorf("http1: expected ObjectNode for request, got %T", node)
	}
	props := obj.Properties()
	head := headparser.RequestHead{
		Method:  literalString(props["method"]),
		URI:     literalString(props["path"]),
		Version: literalString(props["version"]),
	}
	headers, err := nodeToHeaders(props["headers"])
	if err != nil {
		return headparser.RequestHead{}, nil, err
	}
	head.Headers = headers
	body := literalBody(props["body"])
	return head, body, nil
}

// NodeToResponse converts an AST ObjectNode built by ResponseToNode (or
// matching its shape) back into a response head plus body.
func NodeToResponse(node ast.SchemaNode) (headparser.ResponseHead, []byte, error) {
	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		return headparser.ResponseHead{}, nil, fmt.Errorf("http1: expected ObjectNode for response, got %T", node)
	}
	props := obj.Properties()
	head := headparser.ResponseHead{
		Version:    literalString(props["version"]),
		StatusCode: literalStatusCode(props["statusCode"]),
		Reason:     literalString(props["reason"]),
	}
	headers, err := nodeToHeaders(props["headers"])
	if err != nil {
		return headparser.ResponseHead{}, nil, err
	}
	head.Headers = headers
	body := literalBody(props["body"])
	return head, body, nil
}

func nodeToHeaders(node ast.SchemaNode) (headparser.Headers, error) {
	var headers headparser.Headers
	if node == nil {
		return headers, nil
	}
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return headers, fmt.Errorf("http1: expected ArrayDataNode for headers, got %T", node)
	}
	for _, elem := range arr.Elements() {
		obj, ok := elem.(*ast.ObjectNode)
		if !ok {
			continue
		}
		props := obj.Properties()
		headers.Add(literalString(props["key"]), literalString(props["value"]))
	}
	return headers, nil
}

func literalString(node ast.SchemaNode) string {
	lit, ok := node.(*ast.LiteralNode)
	if !ok {
		return ""
	}
	s, _ := lit.Value().(string)
	return s
}

func literalBody(node ast.SchemaNode) []byte {
	if node == nil {
		return nil
	}
	lit, ok := node.(*ast.LiteralNode)
	if !ok {
		return nil
	}
	s, _ := lit.Value().(string)
	if s == "" {
		return nil
	}
	return []byte(s)
}

func literalStatusCode(node ast.SchemaNode) int {
	lit, ok := node.(*ast.LiteralNode)
	if !ok {
		return 0
	}
	switch v := lit.Value().(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		fmt.Sscanf(v, "%d", &n)
		return n
	}
	return 0
}
