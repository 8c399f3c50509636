package main

// @title Reservation Service API
// @version 1.0
// @description Lot-based stock reservation service with full observability (logging, tracing, metrics)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/tair/lot-reservation
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/tair/lot-reservation/blob/main/LICENSE

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Reservations
// @tag.description Order reservation endpoints

// @tag.name Stock
// @tag.description Lot availability and ledger endpoints

// @tag.name Health
// @tag.description Health check endpoints

// @tag.name Swagger
// @tag.description Swagger documentation endpoints
