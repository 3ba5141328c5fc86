package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page is a placeholder view that only announces upcoming features
type Page struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Heading     string   `json:"heading"`
	Message     string   `json:"message"`
	Features    []string `json:"features"`
}

var placeholderPages = map[string]Page{
	"insights": {
		Name:        "insights",
		Title:       "Contract Insights",
		Description: "AI-powered analytics and insights from your contract portfolio",
		Heading:     "Advanced Insights Coming Soon",
		Message:     "We're building powerful analytics to help you understand contract patterns, risk trends, and optimization opportunities across your entire portfolio.",
		Features:    []string{"Risk trending analysis", "Anomaly detection", "Performance metrics", "Portfolio overview"},
	},
	"reports": {
		Name:        "reports",
		Title:       "Contract Reports",
		Description: "Generate comprehensive reports for compliance, analysis, and stakeholders",
		Heading:     "Automated Reporting Coming Soon",
		Message:     "Generate detailed reports with customizable templates, automated scheduling, and export options for all your contract management needs.",
		Features:    []string{"PDF & Excel exports", "Scheduled reports", "Stakeholder sharing", "Custom templates"},
	},
	"settings": {
		Name:        "settings",
		Title:       "Settings",
		Description: "Manage your account preferences and application settings",
		Heading:     "Settings Panel Coming Soon",
		Message:     "Customize your ContractsDash experience with personalized settings, security preferences, and notification controls.",
		Features:    []string{"Profile management", "Notifications", "Security settings", "Theme preferences"},
	},
}

// GetPage serves the placeholder content of a protected page
func GetPage(c *gin.Context) {
	page, ok := placeholderPages[c.Param("name")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		return
	}
	c.JSON(http.StatusOK, page)
}
