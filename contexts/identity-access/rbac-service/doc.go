// Package rbac implements tenant-scoped role and policy administration:
// role CRUD, policy bindings, user role assignment, access review, and
// role-usage metrics.
//
// Layering follows the repository convention: domain entities and sentinel
// errors, application service over explicit ports, memory/postgres adapters,
// module-private transport DTOs.
package rbac
