// Package org exposes the tenant organization hierarchy: employee directory
// with pagination, the reporting-structure tree, manager chains, direct
// reports, and employee portal-access administration.
package org
