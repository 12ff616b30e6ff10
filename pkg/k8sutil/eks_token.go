/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package k8sutil

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"k8s.io/client-go/rest"
	"k8s.io/utils/clock"

	"github.com/ardikabs/downscaler/pkg/awsutil"
)

const (
	// tokenTTL is how long a presigned STS request stays valid.
	tokenTTL = 15 * time.Minute
	// tokenRefreshBuffer renews a cached token this long before it expires.
	tokenRefreshBuffer = 3 * time.Minute
	// emptyPayloadHash is the SHA-256 of an empty body.
	emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// eksTokenSource issues bearer tokens for an EKS cluster from AWS credentials.
type eksTokenSource struct {
	mu          sync.Mutex
	clock       clock.PassiveClock
	clusterName string
	region      string
	awsConfig   aws.Config
	token       string
	expiration  time.Time
}

func newEKSTokenSource(ctx context.Context, cfg *K8SConnectorConfig) (*eksTokenSource, error) {
	if cfg.ClusterName == "" {
		return nil, fmt.Errorf("clusterName is required for EKS token generation")
	}
	if cfg.AWS == nil {
		return nil, fmt.Errorf("AWS connector config is required for EKS token generation")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required for EKS token generation")
	}

	awsConfig, err := awsutil.BuildAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("build AWS config: %w", err)
	}

	return &eksTokenSource{
		clock:       clock.RealClock{},
		clusterName: cfg.ClusterName,
		region:      cfg.Region,
		awsConfig:   awsConfig,
	}, nil
}

// getToken returns the cached token, or a fresh one once the cached token is
// within tokenRefreshBuffer of expiring.
func (s *eksTokenSource) getToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.clock.Now().Before(s.expiration.Add(-tokenRefreshBuffer)) {
		return s.token, nil
	}

	token, expiration, err := s.generatePresignedToken(ctx)
	if err != nil {
		return "", fmt.Errorf("generate presigned token: %w", err)
	}

	s.token = token
	s.expiration = expiration
	return token, nil
}

// generatePresignedToken presigns an STS GetCallerIdentity request bound to the
// cluster name and encodes it as "k8s-aws-v1.<base64url>".
func (s *eksTokenSource) generatePresignedToken(ctx context.Context) (string, time.Time, error) {
	signTime := s.clock.Now().UTC()

	stsEndpoint := fmt.Sprintf("https://sts.%s.amazonaws.com/", s.region)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, stsEndpoint, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("create request: %w", err)
	}

	query := req.URL.Query()
	query.Set("Action", "GetCallerIdentity")
	query.Set("Version", "2011-06-15")
	query.Set("X-Amz-Expires", strconv.FormatInt(int64(tokenTTL/time.Second), 10))
	req.URL.RawQuery = query.Encode()
	req.Header.Set("x-k8s-aws-id", s.clusterName)

	creds, err := s.awsConfig.Credentials.Retrieve(ctx)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("retrieve AWS credentials: %w", err)
	}

	signedURL, _, err := v4.NewSigner().PresignHTTP(ctx, creds, req, emptyPayloadHash, "sts", s.region, signTime)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign request: %w", err)
	}

	token := "k8s-aws-v1." + base64.RawURLEncoding.EncodeToString([]byte(signedURL))
	return token, signTime.Add(tokenTTL), nil
}

// eksTokenRoundTripper injects EKS bearer tokens into outgoing requests.
type eksTokenRoundTripper struct {
	base   http.RoundTripper
	source *eksTokenSource
}

func (rt *eksTokenRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	tokenValue, err := rt.source.getToken(req.Context())
	if err != nil {
		return nil, fmt.Errorf("EKS token generation failed: %w", err)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+tokenValue)
	return rt.base.RoundTrip(clone)
}

// wrapTokenTransport chains the token round-tripper into the REST config's transport.
func wrapTokenTransport(restConfig *rest.Config, source *eksTokenSource) {
	wrap := func(rt http.RoundTripper) http.RoundTripper {
		if rt == nil {
			rt = http.DefaultTransport
		}
		return &eksTokenRoundTripper{base: rt, source: source}
	}

	if restConfig.WrapTransport == nil {
		restConfig.WrapTransport = wrap
		return
	}

	prev := restConfig.WrapTransport
	restConfig.WrapTransport = func(rt http.RoundTripper) http.RoundTripper {
		return wrap(prev(rt))
	}
}
