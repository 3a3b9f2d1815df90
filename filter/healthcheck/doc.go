// Package healthcheck provides a middleware answering GET /healthcheck
// with 200 OK, short-circuiting the rest of the chain.
//
// Setting disable_path to a filesystem path puts the check under
// operator control: while the file exists the endpoint answers
// 503 "DISABLED BY FILE", which lets a load balancer drain a node
// without stopping the process. All other requests pass through
// untouched.
package healthcheck
