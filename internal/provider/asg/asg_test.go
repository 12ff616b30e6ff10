/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package asg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/wellknown"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) DescribeAutoScalingGroups(ctx context.Context, params *autoscaling.DescribeAutoScalingGroupsInput, optFns ...func(*autoscaling.Options)) (*autoscaling.DescribeAutoScalingGroupsOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*autoscaling.DescribeAutoScalingGroupsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) UpdateAutoScalingGroup(ctx context.Context, params *autoscaling.UpdateAutoScalingGroupInput, optFns ...func(*autoscaling.Options)) (*autoscaling.UpdateAutoScalingGroupOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*autoscaling.UpdateAutoScalingGroupOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) CreateOrUpdateTags(ctx context.Context, params *autoscaling.CreateOrUpdateTagsInput, optFns ...func(*autoscaling.Options)) (*autoscaling.CreateOrUpdateTagsOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*autoscaling.CreateOrUpdateTagsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) DeleteTags(ctx context.Context, params *autoscaling.DeleteTagsInput, optFns ...func(*autoscaling.Options)) (*autoscaling.DeleteTagsOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*autoscaling.DeleteTagsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func group(name string, minSize, desired, maxSize int32, tags ...types.TagDescription) types.AutoScalingGroup {
	return types.AutoScalingGroup{
		AutoScalingGroupName: aws.String(name),
		CreatedTime:          aws.Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		MinSize:              aws.Int32(minSize),
		DesiredCapacity:      aws.Int32(desired),
		MaxSize:              aws.Int32(maxSize),
		Tags:                 tags,
	}
}

func tag(key, value string) types.TagDescription {
	return types.TagDescription{Key: aws.String(key), Value: aws.String(value)}
}

func describeOne(m *mockClient, g types.AutoScalingGroup) {
	m.On("DescribeAutoScalingGroups", mock.Anything, &autoscaling.DescribeAutoScalingGroupsInput{
		AutoScalingGroupNames: []string{aws.ToString(g.AutoScalingGroupName)},
	}).Return(&autoscaling.DescribeAutoScalingGroupsOutput{AutoScalingGroups: []types.AutoScalingGroup{g}}, nil).Once()
}

func TestProviderType(t *testing.T) {
	assert.Equal(t, "asg", NewWithClient(&mockClient{}).Type())
}

func TestList(t *testing.T) {
	m := &mockClient{}
	m.On("DescribeAutoScalingGroups", mock.Anything, mock.MatchedBy(func(in *autoscaling.DescribeAutoScalingGroupsInput) bool {
		return in.NextToken == nil
	})).Return(&autoscaling.DescribeAutoScalingGroupsOutput{
		AutoScalingGroups: []types.AutoScalingGroup{group("web", 1, 3, 5, tag("downscaler:uptime", "Mon-Fri 08:00-18:00 UTC"))},
		NextToken:         aws.String("page-2"),
	}, nil).Once()
	m.On("DescribeAutoScalingGroups", mock.Anything, mock.MatchedBy(func(in *autoscaling.DescribeAutoScalingGroupsInput) bool {
		return aws.ToString(in.NextToken) == "page-2"
	})).Return(&autoscaling.DescribeAutoScalingGroupsOutput{
		AutoScalingGroups: []types.AutoScalingGroup{group("worker", 0, 2, 4)},
	}, nil).Once()

	list, err := NewWithClient(m).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "asg", list[0].Type)
	assert.Equal(t, "web", list[0].ID)
	assert.Equal(t, 3, list[0].Capacity)
	assert.Equal(t, "Mon-Fri 08:00-18:00 UTC", list[0].Tags["downscaler:uptime"])
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), list[0].CreatedAt)
	assert.Equal(t, "worker", list[1].Name)
	m.AssertExpectations(t)
}

func TestList_Error(t *testing.T) {
	m := &mockClient{}
	m.On("DescribeAutoScalingGroups", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := NewWithClient(m).List(context.Background())
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.OpList, perr.Op)
	assert.Equal(t, "asg list: throttled", err.Error())
}

func TestSetCapacity(t *testing.T) {
	ctx := context.Background()

	t.Run("within bounds", func(t *testing.T) {
		m := &mockClient{}
		describeOne(m, group("web", 1, 4, 10))
		m.On("UpdateAutoScalingGroup", mock.Anything, &autoscaling.UpdateAutoScalingGroupInput{
			AutoScalingGroupName: aws.String("web"),
			DesiredCapacity:      aws.Int32(2),
		}).Return(&autoscaling.UpdateAutoScalingGroupOutput{}, nil)

		require.NoError(t, NewWithClient(m).SetCapacity(ctx, "web", 2))
		m.AssertExpectations(t)
	})

	t.Run("below min lowers min and records it", func(t *testing.T) {
		m := &mockClient{}
		describeOne(m, group("web", 2, 4, 10))
		m.On("CreateOrUpdateTags", mock.Anything, mock.MatchedBy(func(in *autoscaling.CreateOrUpdateTagsInput) bool {
			return aws.ToString(in.Tags[0].Key) == wellknown.TagOriginalMinSize && aws.ToString(in.Tags[0].Value) == "2"
		})).Return(&autoscaling.CreateOrUpdateTagsOutput{}, nil)
		m.On("UpdateAutoScalingGroup", mock.Anything, &autoscaling.UpdateAutoScalingGroupInput{
			AutoScalingGroupName: aws.String("web"),
			DesiredCapacity:      aws.Int32(0),
			MinSize:              aws.Int32(0),
		}).Return(&autoscaling.UpdateAutoScalingGroupOutput{}, nil)

		require.NoError(t, NewWithClient(m).SetCapacity(ctx, "web", 0))
		m.AssertExpectations(t)
	})

	t.Run("restore puts the recorded min back", func(t *testing.T) {
		m := &mockClient{}
		describeOne(m, group("web", 0, 0, 10, tag(wellknown.TagOriginalMinSize, "2")))
		m.On("UpdateAutoScalingGroup", mock.Anything, &autoscaling.UpdateAutoScalingGroupInput{
			AutoScalingGroupName: aws.String("web"),
			DesiredCapacity:      aws.Int32(4),
			MinSize:              aws.Int32(2),
		}).Return(&autoscaling.UpdateAutoScalingGroupOutput{}, nil)
		m.On("DeleteTags", mock.Anything, mock.MatchedBy(func(in *autoscaling.DeleteTagsInput) bool {
			return aws.ToString(in.Tags[0].Key) == wellknown.TagOriginalMinSize
		})).Return(&autoscaling.DeleteTagsOutput{}, nil)

		require.NoError(t, NewWithClient(m).SetCapacity(ctx, "web", 4))
		m.AssertExpectations(t)
	})

	t.Run("clamped to max", func(t *testing.T) {
		m := &mockClient{}
		describeOne(m, group("web", 0, 1, 3))
		m.On("UpdateAutoScalingGroup", mock.Anything, &autoscaling.UpdateAutoScalingGroupInput{
			AutoScalingGroupName: aws.String("web"),
			DesiredCapacity:      aws.Int32(3),
		}).Return(&autoscaling.UpdateAutoScalingGroupOutput{}, nil)

		require.NoError(t, NewWithClient(m).SetCapacity(ctx, "web", 8))
		m.AssertExpectations(t)
	})

	t.Run("missing group", func(t *testing.T) {
		m := &mockClient{}
		m.On("DescribeAutoScalingGroups", mock.Anything, mock.Anything).Return(&autoscaling.DescribeAutoScalingGroupsOutput{}, nil)

		err := NewWithClient(m).SetCapacity(ctx, "gone", 1)
		assert.EqualError(t, err, "asg scale gone: auto scaling group gone not found")
	})
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	m := &mockClient{}
	describeOne(m, group("web", 0, 1, 3, tag("Downscaler:Exclude", "true")))
	m.On("CreateOrUpdateTags", mock.Anything, &autoscaling.CreateOrUpdateTagsInput{
		Tags: []types.Tag{{
			ResourceId:        aws.String("web"),
			ResourceType:      aws.String("auto-scaling-group"),
			Key:               aws.String(wellknown.TagOriginalCapacity),
			Value:             aws.String("3"),
			PropagateAtLaunch: aws.Bool(false),
		}},
	}).Return(&autoscaling.CreateOrUpdateTagsOutput{}, nil)
	m.On("DeleteTags", mock.Anything, mock.Anything).Return(nil, errors.New("AccessDenied"))

	p := NewWithClient(m)

	v, ok, err := p.ReadTag(ctx, "web", wellknown.TagExclude)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	require.NoError(t, p.WriteTag(ctx, "web", wellknown.TagOriginalCapacity, "3"))

	err = p.DeleteTag(ctx, "web", wellknown.TagOriginalCapacity)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.OpDeleteTag, perr.Op)
	m.AssertExpectations(t)
}
