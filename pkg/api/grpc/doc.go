// Package grpc serves the standard gRPC health service for the daemon.
//
// Pipelines that already probe gRPC health can wait for the configuration
// service to report SERVING before running compile, deploy or verify steps.
package grpc
