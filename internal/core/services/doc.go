// Package services contains the core business logic, free of adapter
// concerns. Services depend on ports (interfaces) and are wired with
// concrete adapters at startup.
package services
