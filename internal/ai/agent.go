package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-retail-pos/internal/database"
	"go-retail-pos/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
)

// RunAgent answers an admin's natural-language question by letting the
// model call store tools: inventory lookup, sales reports, and voucher
// creation.
func RunAgent(userMessage string, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are a retail store assistant.

	RULES:
	1. READ: If a user asks for PRICE, STOCK, or DETAILS of a product:
	   - Call 'check_inventory' to get the full list, then read the JSON
	     to find the specific item and answer the user.
	2. SALES: If the user asks for sales, revenue or discounts given, use
	   'get_sales_report'.
	3. VOUCHERS: If the user asks to create a discount code, call
	   'create_voucher'. Percentage vouchers take an amount between 1 and
	   100; fixed vouchers take a currency amount.

	USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full inventory list. Use this to find ANY product details like ID, Title, Price, or Stock.",
				},
				{
					Name:        "get_sales_report",
					Description: "Get total sales revenue, discount given and sale count for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
				{
					Name:        "create_voucher",
					Description: "Create a discount voucher customers can apply at checkout",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"code":   {Type: genai.TypeString, Description: "Voucher code, e.g. SAVE10"},
							"type":   {Type: genai.TypeString, Description: "'percentage' or 'fixed'"},
							"amount": {Type: genai.TypeNumber, Description: "Percent (1-100) or fixed currency amount"},
						},
						Required: []string{"code", "type", "amount"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {

			if funcCall.Name == "check_inventory" {
				var products []models.Product
				database.DB.Find(&products)

				type SimpleProduct struct {
					ID    uint   `json:"id"`
					Title string `json:"title"`
					Stock int    `json:"stock"`
					Price string `json:"price"`
				}
				var simpleList []SimpleProduct
				for _, p := range products {
					simpleList = append(simpleList, SimpleProduct{
						ID:    p.ID,
						Title: p.Title,
						Stock: p.Stock,
						Price: p.Price.StringFixed(2),
					})
				}

				jsonBytes, _ := json.Marshal(simpleList)

				finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
					Name:     "check_inventory",
					Response: map[string]interface{}{"inventory": string(jsonBytes)},
				})
				if err != nil {
					return "", err
				}
				return printResponse(finalResp), nil
			}

			if funcCall.Name == "get_sales_report" {
				return executeSalesReport(ctx, session, funcCall), nil
			}

			if funcCall.Name == "create_voucher" {
				return executeCreateVoucher(ctx, session, funcCall), nil
			}
		}
	}

	return printResponse(resp), nil
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	startStr := args["start_date"].(string)
	endStr := args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)

	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetSalesReport(start, end)
	if err != nil {
		return "Error calculating sales."
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":        report.TotalRevenue,
			"discount_given": report.TotalDiscount,
			"sales_count":    report.TotalCount,
		},
	})
	return printResponse(finalResp)
}

func executeCreateVoucher(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	voucher := models.Voucher{
		Code:   strings.ToUpper(args["code"].(string)),
		Type:   args["type"].(string),
		Amount: decimal.NewFromFloat(args["amount"].(float64)),
	}

	msg := "created"
	if err := database.DB.Create(&voucher).Error; err != nil {
		msg = "failed: code may already exist"
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "create_voucher",
		Response: map[string]interface{}{"status": msg, "code": voucher.Code},
	})
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
