package facematch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// RekognitionComparer compares faces through AWS Rekognition CompareFaces.
type RekognitionComparer struct {
	client    *rekognition.Client
	threshold float64
}

// NewRekognitionComparer builds a comparer for the given region and
// similarity threshold (0-100). Credentials come from the default AWS
// provider chain.
func NewRekognitionComparer(ctx context.Context, region string, threshold float64) (*RekognitionComparer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("could not load AWS config: %w", err)
	}
	return &RekognitionComparer{
		client:    rekognition.NewFromConfig(cfg),
		threshold: threshold,
	}, nil
}

// Compare reports the best similarity between the reference face and any
// face in the probe frame, and whether it clears the threshold.
func (c *RekognitionComparer) Compare(ctx context.Context, reference, probe []byte) (float64, bool, error) {
	out, err := c.client.CompareFaces(ctx, &rekognition.CompareFacesInput{
		SourceImage:         &types.Image{Bytes: reference},
		TargetImage:         &types.Image{Bytes: probe},
		SimilarityThreshold: aws.Float32(float32(c.threshold)),
	})
	if err != nil {
		return 0, false, fmt.Errorf("compare faces request failed: %w", err)
	}
	if len(out.FaceMatches) == 0 {
		return 0, false, nil
	}

	best := float64(0)
	for _, m := range out.FaceMatches {
		if m.Similarity != nil && float64(*m.Similarity) > best {
			best = float64(*m.Similarity)
		}
	}
	return best, true, nil
}
