package controller

import (
	"strings"
	"testing"
)

func TestParseNewBidReq(t *testing.T) {
	amount, err := ParseNewBidReq([]byte(`{"amount": 300}`))
	if err != nil {
		t.Fatal(err)
	}
	if amount != 300 {
		t.Errorf("Expected amount 300, got %v", amount)
	}

	amount, err = ParseNewBidReq([]byte(`{"amount": 0.5}`))
	if err != nil {
		t.Fatal(err)
	}
	if amount != 0.5 {
		t.Errorf("Expected amount 0.5, got %v", amount)
	}
}

func TestParseNewBidReqRejectsInvalid(t *testing.T) {
	bodies := []string{
		`{"amount": 0}`,
		`{"amount": -5}`,
		`{"amount": "abc"}`,
		`{"amount": abc}`,
		`{"amount": null}`,
		`{}`,
		``,
	}

	for _, body := range bodies {
		if _, err := ParseNewBidReq([]byte(body)); err == nil {
			t.Errorf("Expected body %q to be rejected", body)
		}
	}
}

func TestParseNewOrderReqProduct(t *testing.T) {
	body := `
	{
	"kind": "Product",
	"product": {"productType": "Metal Doors", "width": 2, "height": 1, "depthMm": 3, "quantity": 1},
	"maxPrice": 2500000,
	"auctionDurationMin": 60
	}`

	req, err := ParseNewOrderReq([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if req.Product == nil || req.Product.ProductType != "Metal Doors" {
		t.Errorf("Expected product spec to be parsed, got %+v", req.Product)
	}
	if req.AuctionDurationMin != 60 {
		t.Errorf("Expected duration 60, got %d", req.AuctionDurationMin)
	}
}

func TestParseNewOrderReqLabor(t *testing.T) {
	body := `
	{
	"kind": "Labor",
	"labor": {"laborType": "Welder", "details": "Fix the gate hinges"},
	"startPrice": 500000,
	"auctionDurationMin": 120
	}`

	req, err := ParseNewOrderReq([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if req.Labor == nil || req.Labor.LaborType != "Welder" {
		t.Errorf("Expected labor spec to be parsed, got %+v", req.Labor)
	}
}

func TestParseNewOrderReqRejectsInvalid(t *testing.T) {
	bodies := map[string]string{
		"unknown kind":       `{"kind": "Gadget", "auctionDurationMin": 60}`,
		"zero duration":      `{"kind": "Labor", "labor": {"laborType": "Welder", "details": "x"}, "auctionDurationMin": 0}`,
		"negative duration":  `{"kind": "Labor", "labor": {"laborType": "Welder", "details": "x"}, "auctionDurationMin": -10}`,
		"missing product":    `{"kind": "Product", "auctionDurationMin": 60}`,
		"missing labor":      `{"kind": "Labor", "auctionDurationMin": 60}`,
		"oversized details":  `{"kind": "Labor", "labor": {"laborType": "Welder", "details": "` + strings.Repeat("x", 501) + `"}, "auctionDurationMin": 60}`,
		"malformed json":     `{"kind":`,
	}

	for name, body := range bodies {
		if _, err := ParseNewOrderReq([]byte(body)); err == nil {
			t.Errorf("Expected %s to be rejected", name)
		}
	}
}

func TestParseSetStatusReq(t *testing.T) {
	status, err := ParseSetStatusReq([]byte(`{"status": "Completed"}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(status) != "Completed" {
		t.Errorf("Expected status Completed, got %s", status)
	}

	for _, body := range []string{`{"status": "Broken"}`, `{"status": ""}`, `{}`} {
		if _, err := ParseSetStatusReq([]byte(body)); err == nil {
			t.Errorf("Expected body %q to be rejected", body)
		}
	}
}
