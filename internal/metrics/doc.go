// Package metrics provides dynamo.Metric implementations that summarise a
// run as it is stepped.
package metrics
