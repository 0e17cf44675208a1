package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlocksProcessed tracks total blocks scanned by the indexer
	BlocksProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auction_blocks_processed_total",
			Help: "Total number of blocks processed",
		},
	)

	// EventsIndexed tracks stored auction events per event type
	EventsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_events_indexed_total",
			Help: "Total number of auction events indexed",
		},
		[]string{"event_type"},
	)

	// NodeCallsTotal tracks node gRPC calls per method
	NodeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_node_calls_total",
			Help: "Total number of node calls",
		},
		[]string{"method"},
	)

	// NodeErrorsTotal tracks node call failures per method
	NodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_node_errors_total",
			Help: "Total number of node call errors",
		},
		[]string{"method"},
	)

	// NodeCallLatency tracks node call latency per method
	NodeCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auction_node_call_latency_seconds",
			Help:    "Node call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// ChainFinalizedHeight tracks the last finalized block height reported
	// by the node
	ChainFinalizedHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auction_chain_finalized_height",
			Help: "Last finalized block height of the chain",
		},
	)

	// IndexerCheckpoint tracks the last block height the indexer committed
	IndexerCheckpoint = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auction_indexer_checkpoint",
			Help: "Last block height committed by the indexer",
		},
	)

	// AuthorizationsTotal tracks successful verifier authorizations
	AuthorizationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auction_authorizations_total",
			Help: "Total number of successful wallet authorizations",
		},
	)

	// SponsoredBidsTotal tracks sponsored bid submissions per outcome
	SponsoredBidsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_sponsored_bids_total",
			Help: "Total number of sponsored bid requests",
		},
		[]string{"outcome"},
	)
)
