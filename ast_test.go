package http1

import (
	"testing"

	"github.com/shapestone/shape-core/pkg/ast"

	"github.com/flowmesh/http1/headparser"
)

func TestRequestToNodeRoundTrip(t *testing.T) {
	var h headparser.Headers
	h.Add("Host", "example.com")
	head := headparser.RequestHead{Method: "GET", URI: "/", Version: "HTTP/1.1", Headers: h}
	node := RequestToNode(head, []byte("hi"))

	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		t.Fatalf("RequestToNode() = %T, want *ast.ObjectNode", node)
	}
	props := obj.Properties()
	if lit, ok := props["type"].(*ast.LiteralNode); !ok || lit.Value() != "request" {
		t.Errorf("type = %+v, want request", props["type"])
	}

	gotHead, gotBody, err := NodeToRequest(node)
	if err != nil {
		t.Fatalf("NodeToRequest() error = %v", err)
	}
	if gotHead.Method != "GET" || gotHead.URI != "/" || gotHead.Version != "HTTP/1.1" {
		t.Errorf("NodeToRequest() head = %+v", gotHead)
	}
	if string(gotBody) != "hi" {
		t.Errorf("NodeToRequest() body = %q, want hi", gotBody)
	}
	if v, ok := gotHead.Headers.Get("Host"); !ok || v != "example.com" {
		t.Errorf("Host header = %q, %v", v, ok)
	}
}

func TestResponseToNodeRoundTrip(t *testing.T) {
	head := headparser.ResponseHead{Version: "HTTP/1.1", StatusCode: 404, Reason: "Not Found"}
	node := ResponseToNode(head, nil)

	gotHead, gotBody, err := NodeToResponse(node)
	if err != nil {
		t.Fatalf("NodeToResponse() error = %v", err)
	}
	if gotHead.StatusCode != 404 || gotHead.Reason != "Not Found" || gotBody != nil {
		t.Errorf("NodeToResponse() = %+v body=%q", gotHead, gotBody)
	}
}

func TestNodeToRequestRejectsNonObjectNode(t *testing.T) {
	lit := ast.NewLiteralNode("not an object", ast.Position{})
	if _, _, err := NodeToRequest(lit); err == nil {
		t.Fatal("expected error for non-ObjectNode input")
	}
}
