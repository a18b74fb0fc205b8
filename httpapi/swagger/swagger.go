// Package swagger hand-assembles the OpenAPI document describing the three
// httpapi endpoints. No reflection over live routes: the teacher's own
// grpc-gateway swagger files are generated at code-gen time, not runtime, so
// a static builder matches that spirit (SPEC_FULL.md §6).
package swagger

// Document returns the OpenAPI 3 document for the daemon's HTTP surface as
// a plain map, ready to be marshaled to JSON by the "swagger" CLI command.
func Document() map[string]interface{} {
	return map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":   "kollider-hedge",
			"version": "1.0.0",
		},
		"paths": map[string]interface{}{
			"/hedge/htlc": map[string]interface{}{
				"post": map[string]interface{}{
					"summary": "Apply an HTLC exposure delta to the ledger",
					"requestBody": map[string]interface{}{
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"channel_id": map[string]interface{}{"type": "string"},
										"sats":       map[string]interface{}{"type": "integer"},
										"rate":       map[string]interface{}{"type": "integer"},
									},
									"required": []string{"channel_id", "sats", "rate"},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "applied"},
						"400": map[string]interface{}{"description": "rejected"},
					},
				},
			},
			"/state": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Full serialised ledger snapshot",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "current ledger state"},
					},
				},
			},
			"/stats": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Summary exposure/position statistics",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "channels_sats, channels_usd, position_sats, position_usd, account_balance"},
					},
				},
			},
		},
	}
}
