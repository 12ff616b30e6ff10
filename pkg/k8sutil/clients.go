/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package k8sutil builds Kubernetes clients from kubeconfig files, in-cluster
// credentials or AWS identities for EKS clusters.
package k8sutil

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ardikabs/downscaler/pkg/awsutil"
)

// K8SConnectorConfig holds Kubernetes connector settings.
type K8SConnectorConfig struct {
	// KubeconfigPath points to a kubeconfig file. Empty uses in-cluster
	// credentials, then the default loading rules.
	KubeconfigPath string
	// Context selects a kubeconfig context.
	Context string
	// ClusterName is the EKS cluster to authenticate against with UseEKSToken.
	ClusterName string
	// Region of the EKS cluster.
	Region string
	// ClusterEndpoint and ClusterCAData override endpoint discovery.
	ClusterEndpoint string
	ClusterCAData   []byte
	// UseEKSToken authenticates with a presigned STS token instead of kubeconfig credentials.
	UseEKSToken bool
	AWS         *awsutil.AWSConnectorConfig
}

// ClusterDescriber is the subset of the EKS API used to discover a cluster endpoint.
type ClusterDescriber interface {
	DescribeCluster(
		ctx context.Context,
		params *eks.DescribeClusterInput,
		optFns ...func(*eks.Options),
	) (*eks.DescribeClusterOutput, error)
}

// BuildClient builds a controller-runtime client from the connector config.
func BuildClient(ctx context.Context, cfg *K8SConnectorConfig, scheme *runtime.Scheme) (client.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("K8S connector config is required")
	}

	restConfig, err := BuildRestConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build rest config: %w", err)
	}

	c, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("create kubernetes client: %w", err)
	}
	return c, nil
}

// BuildRestConfig resolves a REST config, discovering the EKS endpoint and
// wrapping the transport with token authentication when UseEKSToken is set.
func BuildRestConfig(ctx context.Context, cfg *K8SConnectorConfig) (*rest.Config, error) {
	if !cfg.UseEKSToken {
		return resolveRestConfig(cfg)
	}

	source, err := newEKSTokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ClusterEndpoint == "" {
		endpoint, caData, err := DiscoverEKSEndpoint(ctx, eks.NewFromConfig(source.awsConfig), cfg.ClusterName)
		if err != nil {
			return nil, err
		}
		cfg.ClusterEndpoint, cfg.ClusterCAData = endpoint, caData
	}

	restConfig := &rest.Config{
		Host: cfg.ClusterEndpoint,
		TLSClientConfig: rest.TLSClientConfig{
			CAData: cfg.ClusterCAData,
		},
	}
	wrapTokenTransport(restConfig, source)
	return restConfig, nil
}

// DiscoverEKSEndpoint returns the API endpoint and decoded CA bundle of an EKS cluster.
func DiscoverEKSEndpoint(ctx context.Context, api ClusterDescriber, clusterName string) (string, []byte, error) {
	out, err := api.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(clusterName)})
	if err != nil {
		return "", nil, fmt.Errorf("describe EKS cluster %s: %w", clusterName, err)
	}
	if out.Cluster == nil || aws.ToString(out.Cluster.Endpoint) == "" {
		return "", nil, fmt.Errorf("EKS cluster %s has no endpoint", clusterName)
	}

	var caData []byte
	if out.Cluster.CertificateAuthority != nil && out.Cluster.CertificateAuthority.Data != nil {
		caData, err = base64.StdEncoding.DecodeString(aws.ToString(out.Cluster.CertificateAuthority.Data))
		if err != nil {
			return "", nil, fmt.Errorf("decode EKS cluster CA: %w", err)
		}
	}

	return aws.ToString(out.Cluster.Endpoint), caData, nil
}

func resolveRestConfig(cfg *K8SConnectorConfig) (*rest.Config, error) {
	if cfg.ClusterEndpoint != "" {
		return &rest.Config{
			Host: cfg.ClusterEndpoint,
			TLSClientConfig: rest.TLSClientConfig{
				CAData: cfg.ClusterCAData,
			},
		}, nil
	}

	if cfg.KubeconfigPath == "" {
		if restConfig, err := rest.InClusterConfig(); err == nil {
			return restConfig, nil
		}
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if cfg.KubeconfigPath != "" {
		rules.ExplicitPath = cfg.KubeconfigPath
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: cfg.Context}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}
	return restConfig, nil
}

// ObjectKeyFromString parses "namespace/name".
func ObjectKeyFromString(s string) (types.NamespacedName, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return types.NamespacedName{}, fmt.Errorf("invalid format: %s (expected namespace/name)", s)
	}
	return types.NamespacedName{
		Namespace: parts[0],
		Name:      parts[1],
	}, nil
}
