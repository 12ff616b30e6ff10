/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package ec2

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/wellknown"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) DescribeInstances(ctx context.Context, params *awsec2.DescribeInstancesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeInstancesOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awsec2.DescribeInstancesOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) StopInstances(ctx context.Context, params *awsec2.StopInstancesInput, optFns ...func(*awsec2.Options)) (*awsec2.StopInstancesOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awsec2.StopInstancesOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) StartInstances(ctx context.Context, params *awsec2.StartInstancesInput, optFns ...func(*awsec2.Options)) (*awsec2.StartInstancesOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awsec2.StartInstancesOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) CreateTags(ctx context.Context, params *awsec2.CreateTagsInput, optFns ...func(*awsec2.Options)) (*awsec2.CreateTagsOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awsec2.CreateTagsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) DeleteTags(ctx context.Context, params *awsec2.DeleteTagsInput, optFns ...func(*awsec2.Options)) (*awsec2.DeleteTagsOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awsec2.DeleteTagsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func instance(id string, state types.InstanceStateName, tags ...types.Tag) types.Instance {
	return types.Instance{
		InstanceId: aws.String(id),
		State:      &types.InstanceState{Name: state},
		Tags:       tags,
	}
}

func tag(key, value string) types.Tag {
	return types.Tag{Key: aws.String(key), Value: aws.String(value)}
}

func TestList(t *testing.T) {
	spot := instance("i-spot", types.InstanceStateNameRunning)
	spot.InstanceLifecycle = types.InstanceLifecycleTypeSpot

	m := &mockClient{}
	m.On("DescribeInstances", mock.Anything, mock.Anything).Return(&awsec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{{
			Instances: []types.Instance{
				instance("i-web", types.InstanceStateNameRunning, tag("Name", "web")),
				instance("i-batch", types.InstanceStateNameStopped),
				instance("i-asg", types.InstanceStateNameRunning, tag(wellknown.ManagedByASGTag, "workers")),
				instance("i-karpenter", types.InstanceStateNameRunning, tag(wellknown.ManagedByKarpenterTag, "default")),
				spot,
			},
		}},
	}, nil)

	list, err := NewWithClient(m).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "i-web", list[0].ID)
	assert.Equal(t, "web", list[0].Name)
	assert.Equal(t, 1, list[0].Capacity)
	assert.Equal(t, "i-batch", list[1].Name)
	assert.Equal(t, 0, list[1].Capacity)
}

func TestSetCapacity(t *testing.T) {
	ctx := context.Background()
	m := &mockClient{}
	m.On("StopInstances", mock.Anything, &awsec2.StopInstancesInput{InstanceIds: []string{"i-web"}}).Return(&awsec2.StopInstancesOutput{}, nil)
	m.On("StartInstances", mock.Anything, &awsec2.StartInstancesInput{InstanceIds: []string{"i-web"}}).Return(nil, errors.New("IncorrectInstanceState"))

	p := NewWithClient(m)
	require.NoError(t, p.SetCapacity(ctx, "i-web", 0))

	err := p.SetCapacity(ctx, "i-web", 1)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "i-web", perr.ID)
	m.AssertExpectations(t)
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	m := &mockClient{}
	m.On("DescribeInstances", mock.Anything, &awsec2.DescribeInstancesInput{InstanceIds: []string{"i-web"}}).Return(&awsec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{{Instances: []types.Instance{instance("i-web", types.InstanceStateNameStopping, tag(wellknown.TagOriginalCapacity, "1"))}}},
	}, nil)
	m.On("CreateTags", mock.Anything, &awsec2.CreateTagsInput{
		Resources: []string{"i-web"},
		Tags:      []types.Tag{tag(wellknown.TagOriginalCapacity, "1")},
	}).Return(&awsec2.CreateTagsOutput{}, nil)
	m.On("DeleteTags", mock.Anything, &awsec2.DeleteTagsInput{
		Resources: []string{"i-web"},
		Tags:      []types.Tag{{Key: aws.String(wellknown.TagOriginalCapacity)}},
	}).Return(&awsec2.DeleteTagsOutput{}, nil)

	p := NewWithClient(m)

	capacity, err := p.CurrentCapacity(ctx, "i-web")
	require.NoError(t, err)
	assert.Equal(t, 0, capacity)

	v, ok, err := p.ReadTag(ctx, "i-web", wellknown.TagOriginalCapacity)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	require.NoError(t, p.WriteTag(ctx, "i-web", wellknown.TagOriginalCapacity, "1"))
	require.NoError(t, p.DeleteTag(ctx, "i-web", wellknown.TagOriginalCapacity))
	m.AssertExpectations(t)
}
