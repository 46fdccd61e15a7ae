package component

import (
	"fmt"

	"github.com/lex00/wetwire-eks-go/intrinsics"
)

const (
	eksConfigFile = " >> /etc/eks/eks.config\n"
	nfsOptions    = "nfsvers=4.1,rsize=1048576,wsize=1048576,hard,timeo=600,retrans=2"
)

// userData returns the bootstrap script as fragments for Fn::Join with an
// empty delimiter. Every fragment without a trailing newline is followed by
// one that ends the line.
func (a *assembly) userData() []any {
	env := intrinsics.R(EnvironmentName)

	fragments := []any{
		"#!/bin/bash\n",
		"INSTANCE_ID=$(/opt/aws/bin/ec2-metadata --instance-id|/usr/bin/awk '{print $2}')\n",
		"hostname ", env, "-eks-${INSTANCE_ID}\n",
		"sed '/HOSTNAME/d' /etc/sysconfig/network > /tmp/network && mv -f /tmp/network /etc/sysconfig/network && echo \"HOSTNAME=",
		env,
		"-eks-${INSTANCE_ID}\" >>/etc/sysconfig/network && /etc/init.d/network restart\n",
		"echo EKS_CLUSTER=", intrinsics.R(EksCluster), eksConfigFile,
	}

	if a.cfg.EnableEFS {
		a.log.Debug().Msg("adding EFS mount to user data")
		fragments = append(fragments,
			"mkdir /efs\n",
			"yum install -y nfs-utils\n",
			"mount -t nfs4 -o "+nfsOptions+" ",
			intrinsics.R(FileSystem),
			".efs.",
			intrinsics.AWS_REGION,
			".amazonaws.com:/ /efs\n",
		)
	}

	agent := a.cfg.AgentExtraConfig
	for _, key := range agent.Keys() {
		value, _ := agent.Get(key)
		fragments = append(fragments, fmt.Sprintf("echo %s=%s", key, value), eksConfigFile)
	}

	for _, line := range a.cfg.AdditionalUserData {
		fragments = append(fragments, line+"\n")
	}

	return fragments
}
