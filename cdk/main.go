package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type BlacklistStackProps struct {
	awscdk.StackProps
}

func NewBlacklistStack(scope constructs.Construct, id string, props *BlacklistStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	// Lambda only allows writes under /tmp, so without POSTGRES_DSN the
	// blacklist lives as long as the execution environment does.
	lambdaFn := awslambda.NewFunction(stack, jsii.String("BlacklistDashboard"), &awslambda.FunctionProps{
		Runtime: awslambda.Runtime_PROVIDED_AL2023(),
		Handler: jsii.String("bootstrap"),
		Code:    awslambda.Code_FromAsset(jsii.String("../"), nil),
		Timeout: awscdk.Duration_Seconds(jsii.Number(30)),
		Environment: &map[string]*string{
			"DATA_DIR":                jsii.String("/tmp"),
			"LOG_LEVEL":               jsii.String("info"),
			"POSTGRES_DSN":            jsii.String(os.Getenv("POSTGRES_DSN")),
			"REDIS_URL":               jsii.String(os.Getenv("REDIS_URL")),
			"RIOT_API_KEY":            jsii.String(os.Getenv("RIOT_API_KEY")),
			"RIOT_REGION":             jsii.String(os.Getenv("RIOT_REGION")),
			"DASHBOARD_PASSWORD_HASH": jsii.String(os.Getenv("DASHBOARD_PASSWORD_HASH")),
		},
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("BlacklistApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("DashboardURL"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)
	NewBlacklistStack(app, "LolBlacklistStack", &BlacklistStackProps{})
	app.Synth(nil)
}
