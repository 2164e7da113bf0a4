// Package http implements the HTTP handlers of the healthstats read API. It
// is a thin layer between chi routing and the services package: handlers
// parse and validate the request, call a service, and render the result.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → datasets tree
//
// # Error Handling
//
// Every failure is rendered as RFC 7807 problem details through
// errors.ErrorHandler:
//
//	400 - a path or query parameter failed validation
//	404 - the requested dataset has not been produced yet
//	500 - the dataset exists but could not be read
//
// Rate limiting (429) and timeouts (504) are answered by middleware before
// a handler runs.
//
// # Routes
//
//	GET /health                    liveness
//	GET /health/ready              a finished run is on disk
//	GET /datasets                  output files and the last run manifest
//	GET /life-expectancy           ?country=&year=&total=
//	GET /healthcare/{year}         combined healthcare table for one year
//	GET /gdp-healthcare/{year}     GDP and healthcare table for one year
//	GET /gdp-life-expectancy       ?country=
//	GET /covid                     COVID excess deaths snapshot
package http
